package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestExtractPageMeta(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		wantTitle string
		wantDesc  string
	}{
		{
			name:      "title and description",
			page:      `<html><head><title> Jazz Night </title><meta name="description" content="Live trio"></head></html>`,
			wantTitle: "Jazz Night",
			wantDesc:  "Live trio",
		},
		{
			name:      "open graph fallback",
			page:      `<html><head><meta property="og:title" content="OG Title"><meta property="og:description" content="OG Desc"></head></html>`,
			wantTitle: "OG Title",
			wantDesc:  "OG Desc",
		},
		{
			name: "empty document",
			page: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, desc, err := ExtractPageMeta(strings.NewReader(tt.page))
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}

func TestFetchService_Fetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><head><title>Artist page</title><meta name="description" content="Bio"></head></html>`)
	}))
	defer srv.Close()

	client := &http.Client{Transport: &http.Transport{}}
	defer client.CloseIdleConnections()

	svc := NewFetchService(client)
	report, err := svc.Fetch(context.Background(), []string{
		srv.URL + "/artist",
		srv.URL + "/missing",
		"ftp://example.com/file",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Results, 3)

	assert.True(t, report.Results[0].OK)
	assert.Equal(t, "Artist page", report.Results[0].Title)
	assert.Equal(t, "Bio", report.Results[0].Description)
	assert.Equal(t, "unexpected status 404", report.Results[1].Error)
	assert.Equal(t, "invalid url", report.Results[2].Error)
}

func TestFetchService_Limits(t *testing.T) {
	svc := NewFetchService(nil)
	var verr *ValidationError

	_, err := svc.Fetch(context.Background(), nil)
	assert.ErrorAs(t, err, &verr)

	urls := make([]string, MaxFetchURLs+1)
	for i := range urls {
		urls[i] = "https://example.com"
	}
	_, err = svc.Fetch(context.Background(), urls)
	assert.ErrorAs(t, err, &verr)
}
