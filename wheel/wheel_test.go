package wheel

import (
	"math/rand"
	"testing"
)

func TestLandingIndexInRange(t *testing.T) {
	w := Default()
	n := len(w.Wedges())
	randGen := rand.New(rand.NewSource(1))

	rotation := 0.0
	for i := 0; i < 1000; i++ {
		result := w.Spin(randGen, rotation)
		if result.Index < 0 || result.Index >= n {
			t.Fatalf("spin %d: index %d out of range [0,%d)", i, result.Index, n)
		}
		if result.Wedge.Label != w.Wedges()[result.Index].Label {
			t.Fatalf("spin %d: wedge does not match index", i)
		}
		rotation = result.Rotation
	}
}

func TestLandingFullTurnsEqualZero(t *testing.T) {
	w := Default()
	want := w.Landing(0)
	for k := 1; k <= 20; k++ {
		got := w.Landing(float64(k) * 360)
		if got != want {
			t.Errorf("Landing(%d*360) = %d, want %d", k, got, want)
		}
	}
}

func TestSpinRotationRange(t *testing.T) {
	w := Default()
	randGen := rand.New(rand.NewSource(42))

	current := 123.0
	for i := 0; i < 500; i++ {
		result := w.Spin(randGen, current)
		added := result.Rotation - current
		// 5回転以上、10回転+端数360°未満
		if added < minSpins*360 || added >= maxSpins*360+360 {
			t.Fatalf("added rotation %f outside expected range", added)
		}
		current = result.Rotation
	}
}

func TestSpinIsDeterministicForRotation(t *testing.T) {
	// 選択はアニメーションから切り離されており、同じ回転角は常に同じマスに落ちる
	w := Default()
	randGen := rand.New(rand.NewSource(7))
	result := w.Spin(randGen, 0)
	if again := w.Landing(result.Rotation); again != result.Index {
		t.Errorf("Landing(%f) = %d, want %d", result.Rotation, again, result.Index)
	}
}

func TestDefaultWedgesContainHearts(t *testing.T) {
	wedges := DefaultWedges()
	if len(wedges) != len(RetroQuestions)+2 {
		t.Fatalf("got %d wedges, want %d", len(wedges), len(RetroQuestions)+2)
	}
	hearts := 0
	questions := 0
	for _, wedge := range wedges {
		if wedge.Heart {
			hearts++
			if wedge.Label != LuckyHeartLabel {
				t.Errorf("heart wedge has label %q", wedge.Label)
			}
		} else {
			questions++
		}
	}
	if hearts != 2 {
		t.Errorf("got %d heart wedges, want 2", hearts)
	}
	if questions != len(RetroQuestions) {
		t.Errorf("got %d question wedges, want %d", questions, len(RetroQuestions))
	}
}
