package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aussiebroadwan/webtemplate/pkg/slogx"
)

// SampleData is the layout of the sample users file.
type SampleData struct {
	Users []SignupInput `json:"users"`
}

// LoadSampleUsers signs up every user in r. Usernames that already exist are
// skipped. It returns how many accounts were created.
func (s *AuthService) LoadSampleUsers(ctx context.Context, r io.Reader) (int, error) {
	log := slogx.FromContext(ctx)

	var data SampleData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return 0, fmt.Errorf("decode sample data: %w", err)
	}

	created := 0
	for i, in := range data.Users {
		_, err := s.Signup(ctx, in)
		if errors.Is(err, ErrUsernameTaken) {
			log.Info("sample user already exists", "username", in.Username)
			continue
		}
		if err != nil {
			return created, fmt.Errorf("sample user %d (%q): %w", i, in.Username, err)
		}
		created++
	}
	return created, nil
}
