// Package firebase builds the Firebase Authentication client used for
// ID-token sign-in.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var ErrNoCredentials = errors.New("firebase: no credentials file configured")

// NewAuthClient returns an auth client for the service account in
// credentialsPath. The client satisfies services.IDTokenVerifier.
func NewAuthClient(ctx context.Context, credentialsPath string, logger *zap.Logger) (*auth.Client, error) {
	if credentialsPath == "" {
		return nil, ErrNoCredentials
	}
	info, err := os.Stat(credentialsPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("firebase: credentials %s: %w", credentialsPath, fs.ErrNotExist)
	case err != nil:
		return nil, fmt.Errorf("firebase: credentials %s: %w", credentialsPath, err)
	case info.IsDir():
		return nil, fmt.Errorf("firebase: credentials %s is a directory", credentialsPath)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("firebase: app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: auth client: %w", err)
	}
	logger.Info("firebase sign-in enabled", zap.String("credentials", credentialsPath))
	return client, nil
}
