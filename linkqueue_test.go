// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue_test

import (
	"sort"
	"sync"
	"testing"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/segqueue"
)

func TestLinkQueueBasic(t *testing.T) {
	q := segqueue.NewLinkQueue[string]()

	if !q.IsLockFree() {
		t.Fatal("IsLockFree: want true")
	}

	if _, ok := q.TryDequeue(); ok {
		t.Fatal("TryDequeue on empty: want ok=false")
	}

	words := []string{"a", "b", "c", "d"}
	for _, w := range words {
		w := w
		q.Enqueue(&w)
	}

	for _, want := range words {
		got, ok := q.TryDequeue()
		if !ok || got != want {
			t.Fatalf("TryDequeue: got (%q, %v), want (%q, true)", got, ok, want)
		}
	}

	if _, ok := q.TryDequeue(); ok {
		t.Fatal("TryDequeue after drain: want ok=false")
	}
}

func TestLinkQueueWithNodePoolSize(t *testing.T) {
	q := segqueue.NewLinkQueue[int](segqueue.WithNodePoolSize(16))
	for round := 0; round < 3; round++ {
		for i := range 32 {
			v := i
			q.Enqueue(&v)
		}
		for i := range 32 {
			if v, ok := q.TryDequeue(); !ok || v != i {
				t.Fatalf("round %d, element %d: got (%d, %v)", round, i, v, ok)
			}
		}
	}
}

func TestLinkQueueLinearizability(t *testing.T) {
	if segqueue.RaceEnabled {
		t.Skip("skip: linearizability test requires concurrent access")
	}

	const numProducers = 4
	const numConsumers = 4
	const perProducer = 3000
	total := numProducers * perProducer

	q := segqueue.NewLinkQueue[int]()
	var produced sync.WaitGroup
	produced.Add(numProducers)
	for p := 0; p < numProducers; p++ {
		go func(id int) {
			defer produced.Done()
			for i := range perProducer {
				v := id*1_000_000 + i
				q.Enqueue(&v)
			}
		}(p)
	}

	var mu sync.Mutex
	got := make([]int, 0, total)
	var count atomix.Int64
	var consumed sync.WaitGroup
	consumed.Add(numConsumers)
	for c := 0; c < numConsumers; c++ {
		go func() {
			defer consumed.Done()
			for count.LoadRelaxed() < int64(total) {
				v, ok := q.TryDequeue()
				if !ok {
					continue
				}
				mu.Lock()
				got = append(got, v)
				mu.Unlock()
				count.AddAcqRel(1)
			}
		}()
	}

	produced.Wait()
	consumed.Wait()

	if len(got) != total {
		t.Fatalf("consumed %d elements, want %d", len(got), total)
	}
	sort.Ints(got)
	for p := 0; p < numProducers; p++ {
		for i := 0; i < perProducer; i++ {
			want := p*1_000_000 + i
			idx := sort.SearchInts(got, want)
			if idx == len(got) || got[idx] != want {
				t.Fatalf("missing element %d", want)
			}
		}
	}
}

func TestLinkQueueClose(t *testing.T) {
	q := segqueue.NewLinkQueue[int]()
	for i := range 5 {
		v := i
		q.Enqueue(&v)
	}
	q.Close()
	if _, ok := q.TryDequeue(); ok {
		t.Fatal("TryDequeue after Close: want ok=false")
	}

	// Enqueue racing a torn-down tail must not panic and must not publish.
	v := 42
	q.Enqueue(&v)
	if _, ok := q.TryDequeue(); ok {
		t.Fatal("TryDequeue after Enqueue on closed queue: want ok=false")
	}
}
