//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddbkv

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	_ = godotenv.Load()

	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	region := os.Getenv("AWS_REGION")
	tableName := os.Getenv("DDB_TEST_TABLE_NAME")

	if tableName == "" {
		t.Skip("DDB_TEST_TABLE_NAME not set, skipping integration test")
	}

	store, err := NewFromCredentials(accessKey, secretKey, region, tableName,
		fmt.Sprintf("DRAFTKV#test-%d", time.Now().Unix()))
	require.NoError(t, err)
	return store
}

func TestIntegrationRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	store := setupTestStore(t)
	key := "proposal_drafts:it-draft:organization"

	require.NoError(t, store.SetItem(key, `{"value":{"name":"Acme"},"timestamp":1}`))
	defer store.RemoveItem(key)

	v, ok := store.GetItem(key)
	require.True(t, ok)
	assert.Contains(t, v, "Acme")

	keys := store.Keys()
	assert.Contains(t, keys, key)

	store.RemoveItem(key)
	_, ok = store.GetItem(key)
	assert.False(t, ok)
}
