package netsvr

import (
	"net/http"

	"github.com/zintix-labs/randlab/server/app"
)

// NetSvr 封裝「路由行為 + 服務啟停」。
//   - 只暴露給最外層 main 使用，其他層一律面向 NetRouter。
//   - 目的是依賴反轉：換 http 框架只要另寫一個 Adapter 實作此介面。
//   - 目前實作基於標準庫 net/http + chi，不支援 fasthttp/fiber 等非標準庫接口。
//   - NetSvr 同時實作 app.Component，可直接交給 app.App 管理生命週期。
type NetSvr interface {
	NetRouter
	app.Component
}

// NetRouter 定義純路由行為，讓子模組只操作路由而不持有啟停控制權。
// Group 回呼只會拿到 NetRouter，看不到 Run/Shutdown，避免 handler
// 層被誤用來控制 server 生命週期。
type NetRouter interface {
	// middleware
	Use(middleware func(http.Handler) http.Handler)

	// 註冊路由
	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Put(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)

	// 群組路由
	Group(path string, fn func(NetRouter))
}
