package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/atinyakov/GophVault/internal/hasher"
	"github.com/atinyakov/GophVault/internal/models"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

var cheap = hasher.New(hasher.Params{Memory: 64, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})

type recordingAdder struct {
	entries []models.NewEntry
	failOn  string
}

func (a *recordingAdder) Add(_ context.Context, e models.NewEntry) (models.CredentialRecord, error) {
	if e.Name == a.failOn {
		return models.CredentialRecord{}, errors.New("server error 500: Failed to add record")
	}
	a.entries = append(a.entries, e)
	return models.CredentialRecord{Owner: e.Owner, Name: e.Name, Username: e.Username, PasswordHash: e.Password}, nil
}

type failingDigester struct{}

func (failingDigester) Hash(string) (string, error) { return "", errors.New("no entropy") }

const seedFile = `[
  {"account_owner": "Andrew", "account_name": "Gmail", "account_username": "bitsbugsbites@gmail.com", "account_password": "blueFLAMINGO"},
  {"account_owner": "Andrew", "account_name": "Bank", "account_username": "3452331", "account_password": "83dK$#d)"},
  {"account_owner": "Roy", "account_name": "Instagram", "account_username": "WesternTrain", "account_password": "8822FortyFour"}
]`

func TestImportRecords(t *testing.T) {
	api := &recordingAdder{}
	var out bytes.Buffer

	added, failed, err := importRecords(context.Background(), strings.NewReader(seedFile), api, cheap, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Zero(t, failed)

	require.Len(t, api.entries, 3)
	plaintexts := []string{"blueFLAMINGO", "83dK$#d)", "8822FortyFour"}
	for i, e := range api.entries {
		assert.True(t, hasher.IsDigest(e.Password))
		ok, err := hasher.Verify(e.Password, plaintexts[i])
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.NotContains(t, out.String(), "blueFLAMINGO")
}

func TestImportRecords_ContinuesAfterFailure(t *testing.T) {
	api := &recordingAdder{failOn: "Bank"}
	var out bytes.Buffer

	added, failed, err := importRecords(context.Background(), strings.NewReader(seedFile), api, cheap, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), "record 2 (Andrew/Bank): server error 500")
	assert.Contains(t, out.String(), "record 3 (Roy/Instagram): added")
}

func TestImportRecords_BadFile(t *testing.T) {
	_, _, err := importRecords(context.Background(), strings.NewReader(`{"not": "a list"}`), &recordingAdder{}, cheap, &bytes.Buffer{})
	assert.ErrorContains(t, err, "decode import file")
}

func TestImportRecords_HashFailureStops(t *testing.T) {
	api := &recordingAdder{}
	_, _, err := importRecords(context.Background(), strings.NewReader(seedFile), api, failingDigester{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "hash password")
	assert.Empty(t, api.entries)
}

func TestImportRecords_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := importRecords(ctx, strings.NewReader(seedFile), &recordingAdder{}, cheap, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}
