package main

import "testing"

func TestDiskUsedPercent(t *testing.T) {
	used, err := diskUsedPercent()
	if err != nil {
		t.Fatalf("diskUsedPercent: %v", err)
	}
	if used < 0 || used > 100 {
		t.Errorf("used percent out of range: %v", used)
	}
}
