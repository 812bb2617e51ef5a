package domain

import (
	"encoding/json"
	"errors"
	"maps"
	"strconv"
)

// Token natures encoded as the first letter of the "kid" header.
const (
	NatureAccess  = 'A'
	NatureRefresh = 'R'
)

// KID builds the header key id for a nature and storage id.
func KID(nature byte, storageID int64) string {
	return string(nature) + strconv.FormatInt(storageID, 10)
}

var errBadKID = errors.New("malformed kid")

// ParseKID splits a "kid" header into its nature and storage id. Standalone
// tokens carry a bare nature and yield id 0.
func ParseKID(kid string) (byte, int64, error) {
	if kid == "" || kid[0] < 'A' || kid[0] > 'Z' {
		return 0, 0, errBadKID
	}
	if len(kid) == 1 {
		return kid[0], 0, nil
	}
	id, err := strconv.ParseInt(kid[1:], 10, 64)
	if err != nil || id < 0 {
		return 0, 0, errBadKID
	}
	return kid[0], id, nil
}

// TokenPair is what issuance hands back.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	CreatedIn    int64  `json:"created_in"` // iat, unix seconds
	ExpiresIn    int64  `json:"expires_in"` // access token exp, unix seconds

	// Extra holds additional fields a remote provider returned.
	Extra map[string]any `json:"-"`
}

func (p TokenPair) MarshalJSON() ([]byte, error) {
	out := maps.Clone(p.Extra)
	if out == nil {
		out = make(map[string]any, 4)
	}
	out["access_token"] = p.AccessToken
	out["refresh_token"] = p.RefreshToken
	out["created_in"] = p.CreatedIn
	out["expires_in"] = p.ExpiresIn
	return json.Marshal(out)
}

// TokenRecord is one persisted refresh token row.
type TokenRecord struct {
	ID        int64
	AccountID string
	Token     string
	Algorithm string
	// Decoder is the base64url encoded verification key.
	Decoder string
}
