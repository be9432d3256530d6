package main

import (
	"crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/zintix-labs/randlab"
	"github.com/zintix-labs/randlab/corefmt"
	"github.com/zintix-labs/randlab/demo/demo_configs"
	"github.com/zintix-labs/randlab/plan"
	"github.com/zintix-labs/randlab/sdk/core"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	name      string
	id        plan.TID
	worker    int
	rounds    int
	draws     int
	seed      uint64
	snapfile  string
	pprofmode string
}

type tidFlag struct{ p *plan.TID }

func (f tidFlag) String() string { return fmt.Sprint(uint(*f.p)) }
func (f tidFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*f.p = plan.TID(uint(u))
	return nil
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.Var(tidFlag{&cfg.id}, "trial", "target trial id")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.rounds, "rounds", 10000000, "rounds per worker")
	flag.IntVar(&cfg.draws, "draws", 0, "print the first N raw draws before simulating")
	var seedArg string
	flag.StringVar(&seedArg, "seed", "", "uint64 seed for the generator, empty = auto")
	flag.StringVar(&cfg.snapfile, "snap", "", "write the seeded generator snapshot to this file")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	s, err := resolveSeed(seedArg)
	if err != nil {
		log.Fatal(err)
	}
	cfg.seed = s
}

// resolveSeed 未指定 -> crypto/rand 補一個，指定則照單全收 (含 0)
func resolveSeed(arg string) (uint64, error) {
	if arg == "" {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(buf[:]), nil
	}
	u, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seed %q: %w", arg, err)
	}
	return u, nil
}

// 這裡解析並分支要執行的模擬器
func executeSimulator() {
	cfg.valid() // 基本檢查

	lab, err := randlab.NewAuto(
		core.Default(),
		randlab.Configs(demo_configs.FS),
	)
	if err != nil {
		log.Fatal(err)
	}
	s, err := lab.NewSimulatorWithSeed(cfg.id, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	ent, _ := lab.EntryById(cfg.id)
	cfg.name = ent.Name
	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)

	// 抽樣預覽：同 seed 另起一顆 core，不影響模擬序列
	if cfg.draws > 0 || cfg.snapfile != "" {
		g := lab.NewCore(cfg.seed)
		if cfg.snapfile != "" {
			if err := dumpSnapshot(cfg.snapfile, g); err != nil {
				log.Fatal(err)
			}
			p.Printf("snapshot written to %s\n", cfg.snapfile)
		}
		if cfg.draws > 0 {
			p.Printf("%s[SEED:%d] first %d raw draws%s\n", green, cfg.seed, cfg.draws, reset)
			for i := 0; i < cfg.draws; i++ {
				fmt.Printf("%4d  %016x\n", i+1, g.Uint64())
			}
		}
	}

	if cfg.worker == 1 { // 單線程
		p.Printf("%s[TRIAL:%s] [SEED:%d] [ROUNDS:%d]%s\n", green, cfg.name, cfg.seed, cfg.rounds, reset)
		st, used, err := s.Sim(cfg.rounds, true)
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
	} else {
		p.Printf("%s[WORKERS:%d] [TRIAL:%s] [SEED:%d] [ROUNDS:%d]%s\n", green, cfg.worker, cfg.name, cfg.seed, cfg.worker*cfg.rounds, reset)
		st, used, err := s.SimMP(cfg.rounds, cfg.worker, true) // 併發
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
	}
}

// dumpSnapshot 以 blob frame 格式把起始快照寫入檔案，供離線回放。
func dumpSnapshot(path string, g *core.Core) error {
	be, err := g.Snapshot()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return corefmt.WriteBlobFrame(f, be)
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}

	// 回合數檢查
	if cfg.rounds < 1 {
		log.Fatal("value err : rounds must > 0")
	}

	// 預覽抽樣太多沒意義，終端也刷不完
	if cfg.draws > 1000 {
		p.Printf("too much preview draws: %d resized to 1k\n", cfg.draws)
		cfg.draws = 1000
	}
}
