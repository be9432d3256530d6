// Package suite 管理一批取樣試驗（trial）的目錄（Single Source of Truth / SSOT）：
// 哪些試驗存在、各自對應哪個設定檔。設定檔一律以 fs.FS 注入，suite 不解析路徑。
package suite

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/plan"
)

var (
	ErrDupID   = errs.NewFatal("duplicate trial id")
	ErrDupName = errs.NewFatal("duplicate trial name")
)

type Entry struct {
	TID        plan.TID
	Name       string
	ConfigName string
}

// Summary 提供試驗的摘要，用於列表/觀察。
type Summary struct {
	TID    plan.TID  `json:"tid"`
	Name   string    `json:"name"`
	Mode   plan.Mode `json:"mode"`
	Rounds int       `json:"rounds"`
}

type Suite struct {
	byID   map[plan.TID]Entry
	byName map[string]Entry
	ids    []plan.TID          // 用來穩定排序
	unique map[string]struct{} // 一組試驗，檔名需唯一
	config *multiFS
	frozen bool
}

func New(cfg ...fs.FS) (*Suite, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create suite")
	}
	return &Suite{
		byID:   map[plan.TID]Entry{},
		byName: map[string]Entry{},
		ids:    make([]plan.TID, 0, 100),
		unique: map[string]struct{}{},
		config: multFS,
		frozen: false,
	}, nil
}

func (s *Suite) Register(metas ...Entry) error {
	if s.frozen {
		return errs.NewWarn("can not register when suite already frozen")
	}
	seenID := map[plan.TID]struct{}{}
	seenName := map[string]struct{}{}
	seenCfg := map[string]struct{}{}
	for _, meta := range metas {
		meta.Name = strings.TrimSpace(meta.Name)
		meta.Name = strings.ToLower(meta.Name)
		if meta.Name == "" {
			return errs.NewFatal("trial name required")
		}
		if err := validFileName(meta.ConfigName); err != nil {
			return err
		}
		if _, ok := s.config.index[meta.ConfigName]; !ok {
			return errs.NewFatal(fmt.Sprintf("config file not found: %s", meta.ConfigName))
		}
		if _, ok := s.byID[meta.TID]; ok {
			return ErrDupID
		}
		if _, ok := s.byName[meta.Name]; ok {
			return ErrDupName
		}
		if _, ok := s.unique[meta.ConfigName]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", meta.ConfigName))
		}
		if _, ok := seenID[meta.TID]; ok {
			return ErrDupID
		}
		if _, ok := seenName[meta.Name]; ok {
			return ErrDupName
		}
		if _, ok := seenCfg[meta.ConfigName]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", meta.ConfigName))
		}
		seenID[meta.TID] = struct{}{}
		seenName[meta.Name] = struct{}{}
		seenCfg[meta.ConfigName] = struct{}{}
	}
	for _, meta := range metas {
		s.unique[meta.ConfigName] = struct{}{}
		s.byID[meta.TID] = meta
		s.byName[meta.Name] = meta
		s.ids = append(s.ids, meta.TID)
	}
	sort.Slice(s.ids, func(i, j int) bool { return s.ids[i] < s.ids[j] })
	return nil
}

func (s *Suite) GetByID(id plan.TID) (Entry, bool) {
	m, ok := s.byID[id]
	return m, ok
}

func (s *Suite) GetByName(name string) (Entry, bool) {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	m, ok := s.byName[name]
	return m, ok
}

func (s *Suite) IDs() []plan.TID {
	if len(s.ids) == 0 {
		return nil
	}
	return append([]plan.TID(nil), s.ids...)
}

func (s *Suite) All() []Entry {
	order := s.IDs()
	m := make([]Entry, 0, len(s.ids))
	for _, id := range order {
		if meta, ok := s.GetByID(id); ok {
			m = append(m, meta)
		}
	}
	return m
}

// TrialPlanById
//
// 會讀取 fs.FS 中的 YAML/JSON 設定、正規化欄位並執行基本檢查後回傳
func (s *Suite) TrialPlanById(id plan.TID) (*plan.TrialPlan, error) {
	e, ok := s.GetByID(id)
	if !ok {
		return nil, errs.NewWarn("id dose not exist in suite")
	}
	src, ok := s.config.GetFS(e.ConfigName)
	if !ok {
		return nil, errs.NewWarn("file name dose not exist in suite")
	}
	raw, err := fs.ReadFile(src, e.ConfigName)
	if err != nil {
		return nil, errs.Wrap(err, "suite parse file error")
	}
	return parseTrialPlanByExt(e.ConfigName, raw)
}

func (s *Suite) Cfg() *multiFS {
	return s.config
}

func (s *Suite) Freeze() {
	s.frozen = true
}

func (s *Suite) IsFrozen() bool {
	return s.frozen
}

func parseTrialPlanByExt(name string, raw []byte) (*plan.TrialPlan, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return plan.GetTrialPlanByYAML(raw)
	case ".json":
		return plan.GetTrialPlanByJSON(raw)
	default:
		return nil, errs.NewFatal(fmt.Sprintf("unsupported config format: %q", name))
	}
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	// 1) 不能包含路徑或類似字元
	if strings.ContainsAny(file, `/\:`) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must be a basename; no / \\ :)", file))
	}
	// 2) 必須以 .yaml/.yml/.json 結尾（大小寫不敏感）
	lower := strings.ToLower(file)
	if !(strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file))
	}
	// 3) 不能以 . 開頭（防止直接 .yaml / .yml）
	if strings.HasPrefix(file, ".") {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (cannot start with '.')", file))
	}
	return nil
}
