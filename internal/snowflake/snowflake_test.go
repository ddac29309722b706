package snowflake

import "testing"

func TestNewGenerator(t *testing.T) {
	_, err := NewGenerator(0)
	if err != nil {
		t.Error(err)
	}
}

func TestNewGeneratorRejectsBigWorkerID(t *testing.T) {
	_, err := NewGenerator(maxWorkerValue + 1)
	if err == nil {
		t.Error("Expected error for oversized worker ID, got nil")
	}
}

func TestGenerateSnowflake(t *testing.T) {
	g, err := NewGenerator(3)
	if err != nil {
		t.Fatal(err)
	}

	id, err := g.Generate()
	if err != nil {
		t.Error(err)
	}

	extracted := Extract(id)
	if extracted.WorkerID != 3 {
		t.Errorf("Extracted worker ID %d, want 3", extracted.WorkerID)
	}
}

func TestSnowflakeIncrementOverflow(t *testing.T) {
	g, err := NewGenerator(0)
	if err != nil {
		t.Fatal(err)
	}

	for range 100000 {
		_, err := g.Generate()
		if err != nil {
			return
		}
	}
	t.Error("Expected increment overflow, but there wasn't")
}
