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

// 小工具：讀取 CSV 的 range 欄位，對每個值數出 <= range 的質數個數，
// 寫回 range,prime_count 的 CSV。只依賴 tally 的計數原語，不碰 core。
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/zintix-labs/randlab/tally"
)

func main() {
	in := flag.String("in", "input.csv", "input csv with a 'range' column")
	out := flag.String("out", "output.csv", "output csv (range,prime_count)")
	flag.Parse()

	ranges, err := readRanges(*in)
	if err != nil {
		log.Fatal(err)
	}

	rows := make([][]string, 0, len(ranges)+1)
	rows = append(rows, []string{"range", "prime_count"})
	for _, r := range ranges {
		// CountBelow 是開區間，+1 讓 range 本身也納入計數
		n := tally.CountBelow(r+1, tally.IsPrime)
		rows = append(rows, []string{
			strconv.FormatUint(r, 10),
			strconv.FormatUint(n, 10),
		})
	}

	if err := writeRows(*out, rows); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Prime counts have been written to %s\n", *out)
}

// readRanges 解析 header 找 range 欄位，逐列取值。
// 欄位順序不固定，所以不能假設 range 在第一欄。
func readRanges(path string) ([]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty csv", path)
	}

	col := -1
	for i, name := range records[0] {
		if name == "range" {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%s: missing 'range' column", path)
	}

	ranges := make([]uint64, 0, len(records)-1)
	for _, row := range records[1:] {
		if col >= len(row) {
			return nil, fmt.Errorf("%s: short row %v", path, row)
		}
		v, err := strconv.ParseUint(row[col], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad range value %q: %w", path, row[col], err)
		}
		ranges = append(ranges, v)
	}
	return ranges, nil
}

func writeRows(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
