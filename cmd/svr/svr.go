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

package main

import (
	"fmt"

	"github.com/zintix-labs/randlab"
	"github.com/zintix-labs/randlab/demo/demo_configs"
	"github.com/zintix-labs/randlab/sdk/core"
	"github.com/zintix-labs/randlab/server"
	"github.com/zintix-labs/randlab/server/logger"
	"github.com/zintix-labs/randlab/server/netsvr"
	"github.com/zintix-labs/randlab/server/svrcfg"
)

// This command is intentionally a "lab server" entrypoint for the randlab repo.
// It enables all developer endpoints by default.
// For production deployments, use a separate scaffold project and run prod mode.
func main() {
	sCfg, addr, err := loadConfigFromEnv()
	if err != nil {
		fmt.Println(err)
		return
	}
	server.RunWithSvr(sCfg, netsvr.NewChiServer(addr))
}

func loadConfigFromEnv() (*svrcfg.SvrCfg, string, error) {
	ec, err := svrcfg.FromEnv()
	if err != nil {
		return nil, "", err
	}

	log, _ := logger.NewAsync(4096, ec.Mode())

	lab, err := randlab.NewAuto(
		core.Default(),
		randlab.Configs(demo_configs.FS),
	)
	if err != nil {
		return nil, "", err
	}
	sCfg := &svrcfg.SvrCfg{
		Log:      log,
		PoolSize: ec.PoolSize,
		Lab:      lab,
	}
	return sCfg, ec.Addr, nil
}
