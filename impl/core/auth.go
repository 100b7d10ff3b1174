package core

import (
	"Concierge/entity"
	"fmt"
)

// AuthenticateByToken resolves an API key to its owner. The configured
// static key always belongs to the admin user.
func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	if c.authKey != "" && token == c.authKey {
		return &entity.UserAuth{Username: "admin", Token: token}, nil
	}

	c.mutex.RLock()
	username, ok := c.keys[token]
	c.mutex.RUnlock()
	if ok {
		return &entity.UserAuth{Username: username, Token: token}, nil
	}

	if c.repo == nil {
		return nil, fmt.Errorf("token not found")
	}
	username, err := c.repo.CheckApiKey(token)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.keys[token] = username
	c.mutex.Unlock()

	return &entity.UserAuth{Username: username, Token: token}, nil
}

func (c *Core) GenerateApiKey(username string) (string, error) {
	if c.repo == nil {
		return "", fmt.Errorf("repository is not set")
	}

	apiKey, err := c.repo.GenerateApiKey(username)
	if err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}

	c.mutex.Lock()
	c.keys[apiKey] = username
	c.mutex.Unlock()
	return apiKey, nil
}
