// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command segqbench drives configurable producer/consumer counts against
// each queue in code.hybscloud.com/segqueue and reports throughput.
//
// Grounded on i5heu/GoQueueBench's cmd/bench: same flag surface (producer
// and consumer counts, run duration, JSON export), same reliance on
// gopsutil for the machine info attached to a report so results are
// comparable across runs on different hardware.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"code.hybscloud.com/segqueue"
)

type result struct {
	Queue        string  `json:"queue"`
	Producers    int     `json:"producers"`
	Consumers    int     `json:"consumers"`
	Enqueued     uint64  `json:"enqueued"`
	Dequeued     uint64  `json:"dequeued"`
	Elapsed      string  `json:"elapsed"`
	ThroughputHz float64 `json:"throughput_ops_sec"`
}

type systemInfo struct {
	NumCPU      int     `json:"num_cpu"`
	GOARCH      string  `json:"go_arch"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	TotalMemory uint64  `json:"total_memory_bytes,omitempty"`
	CPUSpeedMHz float64 `json:"cpu_speed_mhz,omitempty"`
}

type report struct {
	SessionTime string     `json:"session_time"`
	System      systemInfo `json:"system_info"`
	Results     []result   `json:"results"`
}

func collectSystemInfo() systemInfo {
	info := systemInfo{NumCPU: runtime.NumCPU(), GOARCH: runtime.GOARCH}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

// enqueuer and dequeuer let one benchmark loop drive any of BlockQueue,
// LinkQueue or MpscQueue without duplicating the harness per type.
type enqueuer interface {
	Enqueue(*int64)
}

type dequeuer interface {
	TryDequeue() (int64, bool)
}

func runQueue(name string, q interface {
	enqueuer
	dequeuer
}, producers, consumers int, duration time.Duration) result {
	var enqueued, dequeued uint64
	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			var v int64
			for {
				select {
				case <-stop:
					return
				default:
					q.Enqueue(&v)
					atomic.AddUint64(&enqueued, 1)
				}
			}
		}()
	}

	wg.Add(consumers)
	for i := 0; i < consumers; i++ {
		go func() {
			defer wg.Done()
			for {
				if _, ok := q.TryDequeue(); ok {
					atomic.AddUint64(&dequeued, 1)
					continue
				}
				select {
				case <-stop:
					return
				default:
					runtime.Gosched()
				}
			}
		}()
	}

	start := time.Now()
	time.Sleep(duration)
	close(stop)
	wg.Wait()
	elapsed := time.Since(start)

	// Drain whatever producers left behind so the reported dequeued count
	// reflects real work rather than an arbitrary stopping point.
	for {
		if _, ok := q.TryDequeue(); !ok {
			break
		}
		dequeued++
	}

	return result{
		Queue:        name,
		Producers:    producers,
		Consumers:    consumers,
		Enqueued:     atomic.LoadUint64(&enqueued),
		Dequeued:     atomic.LoadUint64(&dequeued),
		Elapsed:      elapsed.String(),
		ThroughputHz: float64(dequeued) / elapsed.Seconds(),
	}
}

func main() {
	producers := flag.Int("producers", runtime.NumCPU(), "number of producer goroutines")
	consumers := flag.Int("consumers", runtime.NumCPU(), "number of consumer goroutines")
	duration := flag.Duration("duration", 2*time.Second, "run duration per queue")
	jsonOut := flag.Bool("json", false, "emit a JSON report instead of a text table")
	flag.Parse()

	results := []result{
		runQueue("BlockQueue", segqueue.NewBlockQueue[int64](), *producers, *consumers, *duration),
		runQueue("LinkQueue", segqueue.NewLinkQueue[int64](), *producers, *consumers, *duration),
	}
	if *consumers == 1 {
		results = append(results, runQueue("MpscQueue", segqueue.NewMpscQueue[int64](), *producers, 1, *duration))
	}

	rep := report{
		SessionTime: time.Now().Format(time.RFC3339),
		System:      collectSystemInfo(),
		Results:     results,
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			fmt.Fprintln(os.Stderr, "segqbench: encode report:", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("%-12s %10s %10s %14s %10s %16s\n", "queue", "producers", "consumers", "dequeued", "elapsed", "ops/sec")
	for _, r := range rep.Results {
		fmt.Printf("%-12s %10d %10d %14d %10s %16.0f\n", r.Queue, r.Producers, r.Consumers, r.Dequeued, r.Elapsed, r.ThroughputHz)
	}
}
