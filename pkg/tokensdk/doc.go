// Package tokensdk is a Go client for the token registry HTTP API.
//
// Account management and issuance calls authenticate with the operator's
// admin key:
//
//	client := tokensdk.NewSDKClient("http://localhost:8080")
//	client.AdminKey = os.Getenv("TOKENREG_ADMIN_KEY")
//
//	err := client.AddAccount(ctx, tokensdk.Account{
//		ID:            "billing",
//		Claims:        map[string]any{"iss": "billing-svc"},
//		AccessMaxAge:  300,
//		RefreshMaxAge: 86400,
//	})
//
//	pair, err := client.IssueTokenPair(ctx, "billing", nil)
//
// Services receiving those tokens can ask the registry to check them:
//
//	claims, err := client.VerifyToken(ctx, pair.AccessToken)
//
// Failed calls return an *APIError carrying the HTTP status and error code.
package tokensdk
