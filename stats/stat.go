package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/randlab/plan"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// DistBucketCount 固定的分桶數：單位值 [0,1) 均分為 10 個 decile。
const DistBucketCount = 10

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// DrawReport 取樣統計報告
type DrawReport struct {
	Summary *SummaryReport `json:"Summary"`
	Dist    *DistReport    `json:"Dist"`
	isDone  bool
}

type SummaryReport struct {
	TrialName string    `json:"TrialName"`
	TrialID   plan.TID  `json:"TrialId"`
	Mode      plan.Mode `json:"Mode"`
	Rounds    int       `json:"Rounds"`

	// 單位值（normalize 到 [0,1) 的輸出）統計：
	// 均勻來源的期望值為 0.5。
	UnitSum   float64 `json:"UnitSum"`
	UnitSqSum float64 `json:"UnitSqSum"` // 平方和
	Mean      float64 `json:"Mean"`
	MeanCI    CI      `json:"MeanCI"`
	Std       float64 `json:"Std"`

	// 位元佔用統計（只在原始 64-bit 取樣時有意義）
	BitsSampled bool    `json:"BitsSampled"`
	LowBitOnes  int     `json:"LowBitOnes"`
	TopBitOnes  int     `json:"TopBitOnes"`
	LowBitRate  float64 `json:"LowBitRate"`
	TopBitRate  float64 `json:"TopBitRate"`
}

// DistReport 單位值區間落點統計
type DistReport struct {
	Bucket  []string  `json:"Bucket"`
	Collect []int     `json:"Collect"`
	Freq    []float64 `json:"Freq"`

	// 對「各桶等機率」假設的卡方檢定
	ChiSq  float64 `json:"ChiSq"`
	PValue float64 `json:"PValue"`
}

// BucketLabels 回傳 decile 分桶的固定標籤。
func BucketLabels() []string {
	labels := make([]string, DistBucketCount)
	for i := range labels {
		labels[i] = fmt.Sprintf("[%.1f,%.1f)", float64(i)/DistBucketCount, float64(i+1)/DistBucketCount)
	}
	return labels
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 取樣過程因為性能原因只累積 sum/sqsum/count，
// 統計完成後請使用 Done 來一次性計算統計結果。
func (s *DrawReport) Done() {
	if s.isDone {
		return
	}
	// Summary
	s.Summary.Mean = s.MeanHat()
	s.Summary.Std = s.StdHat()
	s.Summary.MeanCI = s.Ci()
	if s.Summary.Rounds > 0 && s.Summary.BitsSampled {
		s.Summary.LowBitRate = float64(s.Summary.LowBitOnes) / float64(s.Summary.Rounds)
		s.Summary.TopBitRate = float64(s.Summary.TopBitOnes) / float64(s.Summary.Rounds)
	}

	// Dist
	s.Dist.Freq = make([]float64, len(s.Dist.Collect))
	if s.Summary.Rounds > 0 {
		for i, c := range s.Dist.Collect {
			s.Dist.Freq[i] = float64(c) / float64(s.Summary.Rounds)
		}
	}
	s.Dist.ChiSq, s.Dist.PValue = s.chiSquare()

	s.isDone = true
}

// MeanHat 回傳單位值平均的點估計
func (s *DrawReport) MeanHat() float64 {
	if s.Summary.Rounds == 0 {
		return 0
	}
	return s.Summary.UnitSum / float64(s.Summary.Rounds)
}

// StdHat 回傳單位值的樣本標準差
func (s *DrawReport) StdHat() float64 {
	if s.Summary.Rounds < 2 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)

	sumPow := s.Summary.UnitSum * s.Summary.UnitSum
	variance := (s.Summary.UnitSqSum - sumPow/rounds) / (rounds - 1)

	if variance < 0 {
		variance = 0
	}

	return math.Sqrt(variance)
}

// Ci 回傳(95% Mean)信賴區間
func (s *DrawReport) Ci() CI {
	mean := s.MeanHat()
	std := s.StdHat()
	se := float64(0)
	if s.Summary.Rounds > 1 {
		se = std / math.Sqrt(float64(s.Summary.Rounds))
	}
	ci := CI{
		Lo: max(mean-1.96*se, 0.0),
		Hi: mean + 1.96*se,
	}
	return ci
}

func (s *DrawReport) WriteWith(w io.Writer, rep DrawReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *DrawReport) StdOut(ut time.Duration) {
	formatDuration(ut, s.Summary.Rounds)
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Summary.TrialName, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

// chiSquare 以「各桶等機率」為虛無假設計算卡方統計量與 p-value。
// 自由度 = 桶數 - 1；均勻來源應得到大 p-value（不拒絕）。
func (s *DrawReport) chiSquare() (float64, float64) {
	k := len(s.Dist.Collect)
	if k < 2 || s.Summary.Rounds == 0 {
		return 0, 1
	}
	expected := float64(s.Summary.Rounds) / float64(k)
	chisq := 0.0
	for _, obs := range s.Dist.Collect {
		d := float64(obs) - expected
		chisq += d * d / expected
	}
	dist := distuv.ChiSquared{K: float64(k - 1)}
	return chisq, dist.Survival(chisq)
}

func formatDuration(d time.Duration, draws int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	dps := int(float64(draws) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\ndps : %d draws/sec\n", sec, dps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\ndps : %d draws/sec\n", m, s, dps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\ndps : %d draws/sec\n", h, m, s, dps)
}

// StdOut

func (s *DrawReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Trial Name":  p.Sprintf("%s", s.Summary.TrialName),
		"Trial ID":    fmt.Sprintf("%d", s.Summary.TrialID),
		"Mode":        string(s.Summary.Mode),
		"Total Draws": p.Sprintf("%d", s.Summary.Rounds),
		"Unit Mean":   p.Sprintf("%.6f", s.Summary.Mean),
		"Mean 95% CI": p.Sprintf("[%.6f,%.6f]", s.Summary.MeanCI.Lo, s.Summary.MeanCI.Hi),
		"Unit STD":    p.Sprintf("%.6f", s.Summary.Std),
		"Chi-Square":  p.Sprintf("%.3f", s.Dist.ChiSq),
		"P-Value":     p.Sprintf("%.4f", s.Dist.PValue),
	}
	keys := []string{"Trial Name", "Trial ID", "Mode", "Total Draws", "Unit Mean", "Mean 95% CI", "Unit STD", "Chi-Square", "P-Value"}
	if s.Summary.BitsSampled {
		basic["Low Bit Ones"] = p.Sprintf("%.2f %%", 100.0*s.Summary.LowBitRate)
		basic["Top Bit Ones"] = p.Sprintf("%.2f %%", 100.0*s.Summary.TopBitRate)
		keys = append(keys, "Low Bit Ones", "Top Bit Ones")
	}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
