package app

import (
	"net/http"
	"reflect"
	"testing"
	"time"
)

func TestNewAPIHTTPClient_Config(t *testing.T) {
	c := newAPIHTTPClient()
	if c.Timeout == 0 {
		t.Fatalf("expected non-zero timeout")
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected http.Transport")
	}
	if reflect.ValueOf(http.DefaultTransport).Pointer() == reflect.ValueOf(tr).Pointer() {
		t.Fatalf("transport should not be default")
	}
}

func TestNewPageHTTPClient_Timeout(t *testing.T) {
	if got := newPageHTTPClient(0).Timeout; got != 20*time.Second {
		t.Fatalf("default timeout = %v", got)
	}
	if got := newPageHTTPClient(3 * time.Second).Timeout; got != 3*time.Second {
		t.Fatalf("timeout = %v", got)
	}
}
