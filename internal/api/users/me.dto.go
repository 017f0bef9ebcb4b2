package users

type UserDTO struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type MeResponse struct {
	User        UserDTO          `json:"user"`
	Groups      []uint           `json:"groups"`
	Permissions map[string]int64 `json:"permissions"`
}
