package symres

import "testing"

func TestMergeELFSymbolLayersPriority(t *testing.T) {
	static := map[string]uint64{"puts": 0x1000}
	plt := map[string]uint64{"puts": 0x2000, "calloc": 0x2100}
	got := map[string]uint64{"puts": 0x3000, "calloc": 0x3100, "free": 0x3200}

	mergeELFSymbolLayers(static, plt, got)

	// static wins on collision
	if static["puts"] != 0x1000 {
		t.Errorf("puts = 0x%x, want static's 0x1000", static["puts"])
	}
	// plt wins over got on collision
	if static["calloc"] != 0x2100 {
		t.Errorf("calloc = 0x%x, want plt's 0x2100", static["calloc"])
	}
	// got-only name still gets a bare entry
	if static["free"] != 0x3200 {
		t.Errorf("free = 0x%x, want got's 0x3200", static["free"])
	}

	// prefixed variants are always present regardless of collision
	if static["plt.puts"] != 0x2000 {
		t.Errorf("plt.puts = 0x%x, want 0x2000", static["plt.puts"])
	}
	if static["got.puts"] != 0x3000 {
		t.Errorf("got.puts = 0x%x, want 0x3000", static["got.puts"])
	}
	if static["plt.calloc"] != 0x2100 {
		t.Errorf("plt.calloc = 0x%x, want 0x2100", static["plt.calloc"])
	}
	if static["got.calloc"] != 0x3100 {
		t.Errorf("got.calloc = 0x%x, want 0x3100", static["got.calloc"])
	}
}

func TestMergeELFSymbolLayersEmpty(t *testing.T) {
	static := map[string]uint64{}
	mergeELFSymbolLayers(static, nil, nil)
	if len(static) != 0 {
		t.Errorf("expected no entries, got %d", len(static))
	}
}
