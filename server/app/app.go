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

// Package app 提供應用程式生命週期管理（App），統一啟動與關閉多個 Component。
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout 是優雅關閉的總預算；逾時的元件由其實作自行決定如何收尾。
const shutdownTimeout = 5 * time.Second

// App 負責啟動所有註冊的 Component，並在收到 OS 信號或任一 Component
// 發生錯誤時協調優雅關閉。註冊順序即關閉順序。
type App struct {
	comps []Component
}

// New 建立一個空的 App。
func New() *App { return &App{} }

// NewWith 是 New 的語法糖，建立時直接註冊多個 Component。
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

// Register 註冊一個 Component，該元件將在 Run 時被管理。
func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// Run 以 goroutine 並行啟動所有 Component，阻塞直到收到 OS 終止信號
// （SIGINT/SIGTERM）或任一 Component 的 Run 返回。
//   - OS 信號：優雅關閉後回 nil，視為正常結束。
//   - Component 錯誤：優雅關閉後回傳首個錯誤。
//
// 前提：每個 Component.Run 是阻塞呼叫，代表該元件的生命週期。
func (a *App) Run() error {
	// first 收集最先返回的 Component 錯誤
	first := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			first <- c.Run()
		}(c)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		a.gracefulShutdown(shutdownTimeout)
		return nil
	case err := <-first:
		a.gracefulShutdown(shutdownTimeout)
		return err
	}
}

// gracefulShutdown 在給定 timeout 內依序呼叫所有 Component.Shutdown。
func (a *App) gracefulShutdown(td time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stdout, "shutdown err: %v\n", err)
		}
	}
}
