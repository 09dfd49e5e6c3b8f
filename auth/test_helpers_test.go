package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
	testKeyErr  error
)

func testRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		testKey, testKeyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if testKeyErr != nil {
		t.Fatalf("generate rsa key: %v", testKeyErr)
	}
	return testKey
}

// generateTestRSAPrivateKeyPEM returns the shared test key as a PKCS#8
// "PRIVATE KEY" block, the format service account key files use.
func generateTestRSAPrivateKeyPEM(t *testing.T) string {
	t.Helper()
	encoded, err := x509.MarshalPKCS8PrivateKey(testRSAKey(t))
	if err != nil {
		t.Fatalf("marshal pkcs8 key: %v", err)
	}
	return encodePEM(t, "PRIVATE KEY", encoded)
}

func generateTestPKCS1PrivateKeyPEM(t *testing.T) string {
	t.Helper()
	return encodePEM(t, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(testRSAKey(t)))
}

func generateTestECPrivateKeyPEM(t *testing.T) string {
	t.Helper()
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate ec key: %v", err)
	}
	encoded, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		t.Fatalf("marshal ec key: %v", err)
	}
	return encodePEM(t, "PRIVATE KEY", encoded)
}

func encodePEM(t *testing.T, blockType string, der []byte) string {
	t.Helper()
	pemBlock := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if len(pemBlock) == 0 {
		t.Fatalf("encode %s to pem", blockType)
	}
	return string(pemBlock)
}
