package tui

import (
	"sync"
	"testing"

	"github.com/agbru/fibdispatch/internal/orchestration"
)

func TestTUIProgressReporter_DrainsChannel(t *testing.T) {
	tests := []struct {
		name           string
		numCalculators int
		updates        []orchestration.ProgressUpdate
	}{
		{"single", 1, []orchestration.ProgressUpdate{{Value: 0.25}, {Value: 0.5}, {Value: 1}}},
		{"multiple", 2, []orchestration.ProgressUpdate{{Value: 0.5}, {CalculatorIndex: 1, Value: 1}}},
		{"zero calculators", 0, []orchestration.ProgressUpdate{{Value: 0.5}}},
		{"empty", 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := &TUIProgressReporter{ref: &programRef{}}
			ch := make(chan orchestration.ProgressUpdate, len(tt.updates))
			for _, u := range tt.updates {
				ch <- u
			}
			close(ch)

			var wg sync.WaitGroup
			wg.Add(1)
			go reporter.DisplayProgress(&wg, ch, tt.numCalculators, nil)
			wg.Wait()

			if len(ch) != 0 {
				t.Errorf("%d updates left in the channel", len(ch))
			}
		})
	}
}

func TestProgramRef_Send_NilProgram(t *testing.T) {
	ref := &programRef{}
	ref.Send(ProgressMsg{AverageProgress: 0.5})
}

func TestProgramRef_Send_Concurrent(t *testing.T) {
	ref := &programRef{}

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref.Send(ProgressMsg{AverageProgress: float64(i) / 100})
		}()
	}
	wg.Wait()
}
