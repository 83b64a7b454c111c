//go:build integration

package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"servicelink/pkg/auth"
)

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
	ServerPort   string
	JWTSecret    string
	JWTIssuer    string
}

func NewTestEnv() *TestEnv {
	mongoURI := getEnv("TEST_MONGO_URI", DefaultMongoURI)
	dbName := getEnv("TEST_DB_NAME", DefaultDatabaseName)
	serverPort := getEnv("TEST_SERVER_PORT", "8080")
	serverURL := getEnv("TEST_SERVER_URL", fmt.Sprintf("http://localhost:%s", serverPort))

	return &TestEnv{
		MongoURI:     mongoURI,
		DatabaseName: dbName,
		ServerURL:    serverURL,
		ServerPort:   serverPort,
		JWTSecret:    getEnv("TEST_JWT_SECRET", getEnv("JWT_SECRET", "")),
		JWTIssuer:    getEnv("TEST_JWT_ISSUER", "servicelink"),
	}
}

func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Client) {
	t.Helper()

	if e.JWTSecret == "" {
		t.Skip("TEST_JWT_SECRET must match the server's JWT_SECRET")
	}

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanDocuments(t)

	client := NewClient(e.ServerURL)
	client.WaitForHealthy(t, DefaultHealthCheckTimeout)

	return mongo, client
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanDocuments(t)
		mongo.Close(t)
	}
}

// Token signs a bearer token for actor with the server's secret, so tests
// act as any user without a login flow.
func (e *TestEnv) Token(t *testing.T, actor *auth.Actor) string {
	t.Helper()
	token, err := auth.NewTokenManager(e.JWTSecret, e.JWTIssuer, time.Hour).Issue(actor)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

const (
	DefaultHealthCheckTimeout = 3 * ConnectionTimeout
)
