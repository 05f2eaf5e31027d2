package model

// 認証済みユーザーとbearerトークンの組。
// user と token は必ず両方揃うか両方空（部分状態を作らない）。
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// 両方揃っているときだけ認証済み扱い。
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}
