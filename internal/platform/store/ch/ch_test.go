package ch

import (
	"context"
	"testing"
)

// TestOpen_BadDSN bubbles the parse error
func TestOpen_BadDSN(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{URL: "::not-a-dsn"})
	if err == nil {
		t.Fatalf("Open expected error for bad DSN")
	}
}

// TestNilConn_SafeErrors ensures a zero CH never panics
func TestNilConn_SafeErrors(t *testing.T) {
	t.Parallel()

	var c *CH
	if err := c.Insert(context.Background(), "t", [][]any{{1}}); err == nil {
		t.Fatalf("Insert on nil conn expected error")
	}
	if _, err := c.Query(context.Background(), "SELECT 1"); err == nil {
		t.Fatalf("Query on nil conn expected error")
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("Ping on nil conn expected error")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close on nil conn should be a no op: %v", err)
	}
}

// TestInsert_EmptyRows_NoOp skips the batch entirely
func TestInsert_EmptyRows_NoOp(t *testing.T) {
	t.Parallel()

	// empty input short-circuits before the conn is touched
	if err := (&CH{}).Insert(context.Background(), "t", nil); err != nil {
		t.Fatalf("Insert with no rows should be a no op: %v", err)
	}
}

func TestBuildClientInfo_Products(t *testing.T) {
	t.Parallel()

	info := BuildClientInfo("sweep", "v1.2.3")
	if len(info.Products) == 0 {
		t.Fatalf("expected products")
	}
	if info.Products[0].Name != "tripline" || info.Products[0].Version != "v1.2.3" {
		t.Fatalf("unexpected first product: %+v", info.Products[0])
	}
}
