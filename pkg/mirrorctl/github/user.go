package github

import (
	"context"
	"fmt"
)

type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

type UserService struct {
	client *Client
}

// Current fetches the authenticated user. A non-success status here means
// the credential is invalid or lacks scope.
func (s *UserService) Current(ctx context.Context) (*User, error) {
	req, err := s.client.request(ctx)
	if err != nil {
		return nil, err
	}
	var user User
	resp, err := req.SetResult(&user).Get("/user")
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("failed to get user info: %w", newAPIError(resp))
	}
	return &user, nil
}
