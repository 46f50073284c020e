package source

import "testing"

func TestStrategiesForLadder(t *testing.T) {
	strats := strategiesFor(ConnectionParams{Host: "h", Database: "d"})
	if len(strats) != 3 {
		t.Fatalf("len(strategies) = %d, want 3", len(strats))
	}
	wantModes := []string{"disable", "prefer", "require"}
	for i, want := range wantModes {
		if strats[i].sslmode != want {
			t.Errorf("strategy %d sslmode = %q, want %q", i, strats[i].sslmode, want)
		}
	}
}

func TestStrategiesForForcedMode(t *testing.T) {
	strats := strategiesFor(ConnectionParams{Host: "h", Database: "d", SSLMode: "require"})
	if len(strats) != 1 {
		t.Fatalf("len(strategies) = %d, want 1 when sslmode is forced", len(strats))
	}
	if strats[0].sslmode != "require" {
		t.Errorf("forced sslmode = %q, want require", strats[0].sslmode)
	}
	dsn := withSSLMode(ConnectionParams{Host: "h", User: "u", Password: "p", Database: "d", SSLMode: "require"}.BaseDSN(), strats[0].sslmode)
	if got := dsn; got != "postgres://u:p@h:5432/d?sslmode=require" {
		t.Errorf("forced DSN = %q", got)
	}
}
