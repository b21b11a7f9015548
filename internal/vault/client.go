package vault

import (
	"context"
	"encoding/base64"
	"fmt"

	"logiscore/internal/config"

	"github.com/google/uuid"
	"github.com/hashicorp/vault/api"
)

// Client seals reviewer identities with Vault's transit engine. Anonymous
// reviews store only the ciphertext, so the database alone cannot link an
// anonymous review to its author.
type Client struct {
	client       *api.Client
	transitMount string
	keyName      string
}

// NewClient connects to Vault and makes sure the transit mount and the
// reviewer key exist
func NewClient(ctx context.Context, cfg config.VaultConfig) (*Client, error) {
	apiCfg := api.DefaultConfig()
	apiCfg.Address = cfg.Address

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	c := &Client{
		client:       client,
		transitMount: cfg.TransitMount,
		keyName:      cfg.KeyName,
	}

	if err := c.ensureTransitEngine(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize transit engine: %w", err)
	}
	if err := c.ensureKey(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) ensureTransitEngine(ctx context.Context) error {
	mounts, err := c.client.Sys().ListMountsWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to list mounts: %w", err)
	}

	if _, exists := mounts[c.transitMount+"/"]; exists {
		return nil
	}

	err = c.client.Sys().MountWithContext(ctx, c.transitMount, &api.MountInput{
		Type:        "transit",
		Description: "Transit encryption for LogiScore reviewer identities",
	})
	if err != nil {
		return fmt.Errorf("failed to mount transit engine: %w", err)
	}
	return nil
}

// ensureKey creates the reviewer key. Writing an existing key is a no-op.
func (c *Client) ensureKey(ctx context.Context) error {
	path := fmt.Sprintf("%s/keys/%s", c.transitMount, c.keyName)
	_, err := c.client.Logical().WriteWithContext(ctx, path, map[string]interface{}{
		"type":       "aes256-gcm96",
		"exportable": false,
	})
	if err != nil {
		return fmt.Errorf("failed to create key %s: %w", c.keyName, err)
	}
	return nil
}

// Seal encrypts a user id
func (c *Client) Seal(ctx context.Context, userID uuid.UUID) (string, error) {
	path := fmt.Sprintf("%s/encrypt/%s", c.transitMount, c.keyName)

	secret, err := c.client.Logical().WriteWithContext(ctx, path, map[string]interface{}{
		"plaintext": base64.StdEncoding.EncodeToString([]byte(userID.String())),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}
	if secret == nil {
		return "", fmt.Errorf("empty encrypt response")
	}

	ciphertext, ok := secret.Data["ciphertext"].(string)
	if !ok {
		return "", fmt.Errorf("invalid ciphertext response")
	}
	return ciphertext, nil
}

// Open decrypts a value produced by Seal
func (c *Client) Open(ctx context.Context, ciphertext string) (uuid.UUID, error) {
	path := fmt.Sprintf("%s/decrypt/%s", c.transitMount, c.keyName)

	secret, err := c.client.Logical().WriteWithContext(ctx, path, map[string]interface{}{
		"ciphertext": ciphertext,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	if secret == nil {
		return uuid.Nil, fmt.Errorf("empty decrypt response")
	}

	encoded, ok := secret.Data["plaintext"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid plaintext response")
	}

	plaintext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode plaintext: %w", err)
	}

	id, err := uuid.ParseBytes(plaintext)
	if err != nil {
		return uuid.Nil, fmt.Errorf("sealed value is not a user id: %w", err)
	}
	return id, nil
}

// Health reports whether Vault is reachable and unsealed
func (c *Client) Health(ctx context.Context) error {
	health, err := c.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}
