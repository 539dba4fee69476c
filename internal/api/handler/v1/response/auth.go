package response

import "github.com/mkwawa-heritage/marketplace-api/internal/domain"

type LoginResponse struct {
	Token string       `json:"token"`
	Staff domain.Staff `json:"staff"`
}
