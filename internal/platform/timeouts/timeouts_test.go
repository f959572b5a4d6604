package timeouts

import "testing"

func TestRequestFitsInsideDial(t *testing.T) {
	if GRPCRequest <= 0 || GRPCDial <= 0 || Shutdown <= 0 {
		t.Fatal("timeouts must be positive")
	}
	if GRPCRequest > GRPCDial {
		t.Fatalf("GRPCRequest = %v, want at most GRPCDial %v", GRPCRequest, GRPCDial)
	}
}
