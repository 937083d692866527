package winclass

import "testing"

var monitor = Rect{Left: 0, Top: 0, Right: 2560, Bottom: 1440}

// gameWindow returns a borderless window covering the whole monitor.
func gameWindow() Window {
	return Window{
		PID:     5120,
		Visible: true,
		Focused: true,
		Client:  monitor,
		Monitor: monitor,
	}
}

func TestClassify_Fullscreen(t *testing.T) {
	w := gameWindow()
	if got := Classify(w); got != KindFullscreen {
		t.Errorf("Classify() = %v, want fullscreen", got)
	}

	// Exact coverage does not require focus.
	w.Focused = false
	if got := Classify(w); got != KindFullscreen {
		t.Errorf("Classify() without focus = %v, want fullscreen", got)
	}
}

func TestClassify_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Window)
	}{
		{"invisible", func(w *Window) { w.Visible = false }},
		{"has caption", func(w *Window) { w.HasCaption = true }},
		{"has sizable border", func(w *Window) { w.HasSizableBorder = true }},
		{"tiny client area", func(w *Window) {
			w.Client = Rect{Left: 0, Top: 0, Right: 200, Bottom: 100}
		}},
		{"parked off-screen", func(w *Window) {
			w.Client = Rect{Left: -32000, Top: -32000, Right: -29440, Bottom: -30560}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := gameWindow()
			tt.mutate(&w)
			if got := Classify(w); got != KindNone {
				t.Errorf("Classify() = %v, want none", got)
			}
		})
	}
}

func TestClassify_BorderlessCandidate(t *testing.T) {
	square := Rect{Left: 0, Top: 0, Right: 1000, Bottom: 1000}

	tests := []struct {
		name      string
		client    Rect
		focused   bool
		maximized bool
		want      Kind
	}{
		{
			name:    "98 percent coverage with focus",
			client:  Rect{Left: 0, Top: 0, Right: 990, Bottom: 990}, // 98.01%
			focused: true,
			want:    KindBorderless,
		},
		{
			name:    "97 percent coverage never qualifies",
			client:  Rect{Left: 0, Top: 0, Right: 985, Bottom: 985}, // 97.02%
			focused: true,
			want:    KindNone,
		},
		{
			name:    "near-full coverage without focus",
			client:  Rect{Left: 0, Top: 0, Right: 990, Bottom: 990},
			focused: false,
			want:    KindNone,
		},
		{
			name:      "maximized bordered window look-alike",
			client:    Rect{Left: 0, Top: 0, Right: 990, Bottom: 990},
			focused:   true,
			maximized: true,
			want:      KindNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Window{
				PID:       900,
				Visible:   true,
				Focused:   tt.focused,
				Maximized: tt.maximized,
				Client:    tt.client,
				Monitor:   square,
			}
			if got := Classify(w); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDenylisted(t *testing.T) {
	tests := []struct {
		process string
		class   string
		want    bool
	}{
		{"explorer.exe", "CabinetWClass", true},
		{"EXPLORER.EXE", "", true},
		{"dwm.exe", "", true},
		{"game.exe", "Shell_TrayWnd", true},
		{"game.exe", "Windows.UI.Core.CoreWindow", true},
		{"game.exe", "UnityWndClass", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.process+"/"+tt.class, func(t *testing.T) {
			if got := Denylisted(tt.process, tt.class); got != tt.want {
				t.Errorf("Denylisted(%q, %q) = %v, want %v", tt.process, tt.class, got, tt.want)
			}
		})
	}
}

func TestRect_Area(t *testing.T) {
	if got := (Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}).Area(); got != 100 {
		t.Errorf("Area() = %d, want 100", got)
	}
	if got := (Rect{Left: 10, Top: 10, Right: 0, Bottom: 0}).Area(); got != 0 {
		t.Errorf("degenerate Area() = %d, want 0", got)
	}
}
