package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"github.com/syedhisham/bxtrack/internal/config"
)

// GoogleUser is the identity extracted from a verified Google ID token
type GoogleUser struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier verifies an ID token issued by Google sign-in.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleUser, error)
}

// NewGoogleVerifier picks a verifier from the configuration: Firebase Admin
// when a service account is set, plain Google token validation when only a
// client ID is set. It returns nil, nil when Google login is not configured.
func NewGoogleVerifier(ctx context.Context, cfg *config.Config) (GoogleVerifier, error) {
	switch {
	case cfg.FirebaseCredentials != "":
		client, err := InitFirebase(ctx, cfg.FirebaseCredentials)
		if err != nil {
			return nil, err
		}
		return &firebaseVerifier{client: client}, nil
	case cfg.GoogleClientID != "":
		return &idTokenVerifier{clientID: cfg.GoogleClientID}, nil
	default:
		return nil, nil
	}
}

// InitFirebase initializes the Firebase Admin SDK and returns the Auth client
func InitFirebase(ctx context.Context, credentialsFile string) (*firebaseauth.Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}
	return client, nil
}

type firebaseVerifier struct {
	client *firebaseauth.Client
}

func (v *firebaseVerifier) Verify(ctx context.Context, idToken string) (*GoogleUser, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("invalid firebase token: %w", err)
	}
	user := claimsUser(token.Claims)
	user.UID = token.UID
	return user, nil
}

type idTokenVerifier struct {
	clientID string
}

func (v *idTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleUser, error) {
	payload, err := idtoken.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", err)
	}
	user := claimsUser(payload.Claims)
	user.UID = payload.Subject
	return user, nil
}

func claimsUser(claims map[string]interface{}) *GoogleUser {
	user := &GoogleUser{}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	if picture, ok := claims["picture"].(string); ok {
		user.Picture = picture
	}
	return user
}
