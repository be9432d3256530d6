package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// runTest 清 cache 後跑全套測試，只印出 ok/FAIL 摘要行。
// race=true 時加上 -race（模擬器與 GenPool 的併發路徑需要定期跑）。
func runTest(race bool) {
	PrintGreen("running tests")

	cleanTestCache()

	args := []string{"test", "./...", "-cover", "-count=1"}
	if race {
		args = append(args, "-race")
	}
	cmd := exec.Command("go", args...)

	out, err := cmd.StdoutPipe()
	if err != nil {
		panic(err)
	}
	// 合併 stderr，編譯錯誤才不會被吞掉
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		PrintRed(fmt.Sprintf("Error starting go test: %v", err))
		os.Exit(1)
	}

	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"),
			strings.Contains(line, "build failed"),
			strings.Contains(line, "setup failed"):
			PrintRed(line)
		}
	}

	if err := cmd.Wait(); err != nil {
		PrintRed("\nTests Finished with Errors\n")
		os.Exit(1)
	}
}

// runTestDetail 以 verbose 模式跑測試，過濾掉 "[no test files]" 行。
func runTestDetail() {
	PrintGreen("running tests (detail)")

	cleanTestCache()

	cmd := exec.Command("go", "test", "./...", "-v", "-count=1")
	out, err := cmd.StdoutPipe()
	if err != nil {
		PrintRed(fmt.Sprintf("failed to get stdout pipe: %v", err))
		os.Exit(1)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		PrintRed(fmt.Sprintf("Error starting go test: %v", err))
		os.Exit(1)
	}

	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "[no test files]") {
			continue
		}
		switch {
		case strings.HasPrefix(line, "--- FAIL"), strings.HasPrefix(line, "FAIL"):
			PrintRed(line)
		case strings.HasPrefix(line, "--- PASS"), strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		default:
			PrintDefault(line)
		}
	}

	if err := cmd.Wait(); err != nil {
		PrintRed("\nTests Finished with Errors\n")
		os.Exit(1)
	}
}

func cleanTestCache() {
	clean := exec.Command("go", "clean", "-testcache")
	clean.Stdout = os.Stdout
	clean.Stderr = os.Stderr
	if err := clean.Run(); err != nil {
		PrintRed(fmt.Sprintf("go clean -testcache failed: %v", err))
		os.Exit(1)
	}
}
