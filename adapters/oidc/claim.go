// 參考https://openid.net/specs/openid-connect-core-1_0.html#StandardClaims
package oidc

type Claims struct {
	Sub               string `json:"sub"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	Nickname          string `json:"nickname"`
	Picture           string `json:"picture"`
	PhoneNumber       string `json:"phone_number"`
}

// DisplayName 依 preferred_username、name、nickname、email 的順序取第一個有值的欄位
func (c Claims) DisplayName() string {
	for _, v := range []string{c.PreferredUsername, c.Name, c.Nickname, c.Email} {
		if v != "" {
			return v
		}
	}
	return c.Sub
}
