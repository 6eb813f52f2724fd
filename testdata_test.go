package main

import (
	"os"
	"path/filepath"
	"testing"
)

const testMap = `osu file format v14

[General]
AudioLeadIn: 0

[Difficulty]
SliderMultiplier:1.4

[TimingPoints]
0,500,4,2,0,60,1,0

[HitObjects]
256,192,1000,5,0,0:0:0:0:
100,100,1500,2,0,B|200:200|300:100,2,300
256,192,4000,12,0,5000,0:0:0:0:
`

func writeMap(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
