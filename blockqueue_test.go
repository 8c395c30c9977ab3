// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segqueue_test

import (
	"sort"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/segqueue"
)

func TestBlockQueueBasic(t *testing.T) {
	q := segqueue.NewBlockQueue[int]()

	if !q.IsLockFree() {
		t.Fatal("IsLockFree: want true")
	}

	if _, ok := q.TryDequeue(); ok {
		t.Fatal("TryDequeue on empty: want ok=false")
	}

	for i := range 200 {
		v := i
		q.Enqueue(&v)
	}

	for i := range 200 {
		v, ok := q.TryDequeue()
		if !ok {
			t.Fatalf("TryDequeue(%d): want ok=true", i)
		}
		if v != i {
			t.Fatalf("TryDequeue(%d): got %d, want %d", i, v, i)
		}
	}

	if _, ok := q.TryDequeue(); ok {
		t.Fatal("TryDequeue after drain: want ok=false")
	}
}

// TestBlockQueueBlockCrossing exercises the block-switch path (BlockCap=63)
// several times over, so at least one enqueue lands exactly on the
// switching offset and at least one dequeue triggers destroyBlock.
func TestBlockQueueBlockCrossing(t *testing.T) {
	q := segqueue.NewBlockQueue[int]()
	const n = 63*4 + 7

	for i := range n {
		v := i
		q.Enqueue(&v)
	}
	for i := range n {
		v, ok := q.TryDequeue()
		if !ok || v != i {
			t.Fatalf("element %d: got (%d, %v), want (%d, true)", i, v, ok, i)
		}
	}
}

func TestBlockQueuePerProducerOrder(t *testing.T) {
	if segqueue.RaceEnabled {
		t.Skip("skip: linearizability test requires concurrent access")
	}

	const numProducers = 8
	const perProducer = 2000

	q := segqueue.NewBlockQueue[int]()
	var wg sync.WaitGroup
	wg.Add(numProducers)
	for p := 0; p < numProducers; p++ {
		go func(id int) {
			defer wg.Done()
			for i := range perProducer {
				v := id*1_000_000 + i
				q.Enqueue(&v)
			}
		}(p)
	}
	wg.Wait()

	lastSeen := make(map[int]int, numProducers)
	total := numProducers * perProducer
	for i := 0; i < total; i++ {
		var v int
		var ok bool
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if v, ok = q.TryDequeue(); ok {
				break
			}
		}
		if !ok {
			t.Fatalf("TryDequeue timed out after %d elements", i)
		}
		producer, seq := v/1_000_000, v%1_000_000
		if seq < lastSeen[producer] {
			t.Fatalf("producer %d: out-of-order element, got seq %d after %d", producer, seq, lastSeen[producer])
		}
		lastSeen[producer] = seq + 1
	}
}

func TestBlockQueueLinearizability(t *testing.T) {
	if segqueue.RaceEnabled {
		t.Skip("skip: linearizability test requires concurrent access")
	}

	const numProducers = 4
	const numConsumers = 4
	const perProducer = 5000
	total := numProducers * perProducer

	q := segqueue.NewBlockQueue[int]()
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
	var consumed sync.WaitGroup
	var count atomix.Int64
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

func TestBlockQueueClose(t *testing.T) {
	q := segqueue.NewBlockQueue[int]()
	for i := range 10 {
		v := i
		q.Enqueue(&v)
	}
	q.Close()
	if _, ok := q.TryDequeue(); ok {
		t.Fatal("TryDequeue after Close: want ok=false")
	}
}

func TestBlockQueueWithBlockPoolSize(t *testing.T) {
	q := segqueue.NewBlockQueue[int](segqueue.WithBlockPoolSize(8))
	for i := range 63 * 3 {
		v := i
		q.Enqueue(&v)
	}
	for i := range 63 * 3 {
		if v, ok := q.TryDequeue(); !ok || v != i {
			t.Fatalf("element %d: got (%d, %v)", i, v, ok)
		}
	}
}
