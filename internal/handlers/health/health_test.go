package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DENAC/internal/frames"
)

type failingFetcher struct{}

func (failingFetcher) Fetch(ctx context.Context, index int) (io.ReadCloser, error) {
	return nil, errors.New("missing")
}

func TestHealth(t *testing.T) {
	store, err := frames.NewStore(2, failingFetcher{})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	get := func() Response {
		rec := httptest.NewRecorder()
		Handler("denac-test", store)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
			t.Fatalf("got %d %s", rec.Code, rec.Header().Get("Content-Type"))
		}
		var resp Response
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		return resp
	}

	if resp := get(); resp.Status != "ok" || resp.Instance != "denac-test" || resp.Frames.Loaded {
		t.Fatalf("before load: %+v", resp)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store.Load(ctx)
	if err := store.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	resp := get()
	if !resp.Frames.Loaded || resp.Frames.Total != 2 || resp.Frames.Failed != 2 || resp.Frames.Completed != 2 {
		t.Fatalf("after load: %+v", resp.Frames)
	}
}
