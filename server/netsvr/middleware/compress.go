package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

func isNoBodyStatus(code int) bool {
	// 204 No Content, 304 Not Modified, 1xx Informational
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

// CompressConfig
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
}

// pooledEncoder 是 gzip.Writer / zstd.Encoder 的共同面貌，
// 讓兩種編碼共用一條 serveCompressed 路徑。
type pooledEncoder interface {
	io.Writer
	Reset(w io.Writer)
	Close() error
}

var (
	gzipPool sync.Pool
	zstdPool sync.Pool
)

func newGzipEncoder(w io.Writer) pooledEncoder {
	gw, _ := gzip.NewWriterLevel(w, DefaultCompressConfig.GzipLevel)
	return gw
}

func newZstdEncoder(w io.Writer) pooledEncoder {
	zw, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(DefaultCompressConfig.ZstdLevel),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		panic(err)
	}
	return zw
}

// --- ResponseWriter Wrapper ---

type compressResponseWriter struct {
	http.ResponseWriter
	w        io.Writer // 指向 gzip.Writer 或 zstd.Encoder
	disabled bool      // 標記是否動態取消壓縮
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	// 已停用壓縮 (204/304)，直接寫入底層
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}

	// 防禦隱式 Header 發送
	cw.Header().Del("Content-Length")

	// 嗅探 Content-Type
	if cw.Header().Get("Content-Type") == "" {
		cw.Header().Set("Content-Type", http.DetectContentType(b))
	}

	return cw.w.Write(b)
}

func (cw *compressResponseWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")

	// 動態偵測是否應該取消壓縮 (204/304/1xx)
	if isNoBodyStatus(code) {
		cw.disabled = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}

	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressResponseWriter) Flush() {
	// 只有在啟用壓縮時，才 Flush 壓縮器
	if !cw.disabled {
		if f, ok := cw.w.(interface{ Flush() error }); ok {
			_ = f.Flush()
		}
	}
	// 永遠 Flush 底層
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

func (cw *compressResponseWriter) Push(target string, opts *http.PushOptions) error {
	if p, ok := cw.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return errors.New("underlying response writer does not support Pusher")
}

// --- Middleware 入口 ---

func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// [Guard 1] WebSocket / Head
		if r.Method == http.MethodHead || isWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}

		// [Guard 2] 避免二次壓縮
		if w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}

		encoding := r.Header.Get("Accept-Encoding")
		switch {
		case strings.Contains(encoding, "zstd"):
			serveCompressed(w, r, next, "zstd", &zstdPool, newZstdEncoder)
		case strings.Contains(encoding, "gzip"):
			serveCompressed(w, r, next, "gzip", &gzipPool, newGzipEncoder)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// serveCompressed 以指定編碼包裝 response，encoder 走 sync.Pool 重用。
// 若 response 中途被標記 disabled (204/304)，Close 前先 Reset 到 io.Discard，
// 讓 encoder footer 被丟棄，不污染無 body 的回應。
func serveCompressed(
	w http.ResponseWriter, r *http.Request, next http.Handler,
	name string, pool *sync.Pool, newEnc func(io.Writer) pooledEncoder,
) {
	w.Header().Set("Content-Encoding", name)
	w.Header().Add("Vary", "Accept-Encoding")

	var enc pooledEncoder
	if v := pool.Get(); v != nil {
		enc = v.(pooledEncoder)
		enc.Reset(w)
	} else {
		enc = newEnc(w)
	}

	cw := &compressResponseWriter{ResponseWriter: w, w: enc}
	defer func() {
		if cw.disabled {
			enc.Reset(io.Discard)
		}
		_ = enc.Close()
		pool.Put(enc)
	}()

	next.ServeHTTP(cw, r)
}
