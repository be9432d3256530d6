// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package perf

import (
	"os"
	"runtime"
	"runtime/pprof"
)

const pprofDir = "build/profiling" // pprof檔案寫入路徑

// RunPProf 依 mode 決定以哪種 profiling 包住 exe；未知或空字串直接執行。
//
// Usage like:
//
//	go run ./cmd/run -p cpu
func RunPProf(exe func(), mode string) {
	switch mode {
	case "cpu":
		PProfCPU(exe)
	case "heap":
		PProfHeap(exe)
	case "allocs":
		PProfAllocs(exe)
	default:
		exe()
	}
}

// profileFile 確保輸出目錄存在後建立 profile 檔；失敗直接 panic，
// profiling 是顯式要求的，寫不出檔案沒有退路。
func profileFile(name string) *os.File {
	_ = os.MkdirAll(pprofDir, 0o755)
	f, err := os.Create(pprofDir + "/" + name)
	if err != nil {
		panic("failed to create " + name + " : " + err.Error())
	}
	return f
}

// PProfCPU 對 exe 全程做 CPU profiling。
// 除了性能分析，輸出也可以當構建時 pgo 的優化 blueprint。
// 輸出檔：build/profiling/cpu.pprof
func PProfCPU(exe func()) {
	f := profileFile("cpu.pprof")
	defer f.Close()

	if err := pprof.StartCPUProfile(f); err != nil {
		panic("failed to start pprof : " + err.Error())
	}
	defer pprof.StopCPUProfile()

	exe()
}

// PProfHeap 在 exe() 執行完後寫出一次 Heap Snapshot（in-use memory）。
// 寫出前先 runtime.GC()，讓快照貼近 Live Objects 的視圖。
// 輸出檔：build/profiling/heap.pprof
func PProfHeap(exe func()) {
	exe()

	runtime.GC()

	f := profileFile("heap.pprof")
	defer f.Close()

	if err := pprof.WriteHeapProfile(f); err != nil {
		panic("failed to write heap profile : " + err.Error())
	}
}

// PProfAllocs 在 exe() 後寫出「累積配置」(allocs) profile，
// 搭配 -alloc_space / -alloc_objects 指標查看整體分配熱點。
// 輸出檔：build/profiling/allocs.pprof
func PProfAllocs(exe func()) {
	exe()

	f := profileFile("allocs.pprof")
	defer f.Close()

	if prof := pprof.Lookup("allocs"); prof != nil {
		if err := prof.WriteTo(f, 0); err != nil {
			panic("failed to write allocs profile : " + err.Error())
		}
	}
}
