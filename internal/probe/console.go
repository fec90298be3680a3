package probe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

const ruleWidth = 50

// Console prints the human-readable probe transcript.
type Console struct {
	w io.Writer
}

// NewConsole writes to w, or stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.w, format+"\n", args...)
}

func (c *Console) Println(s string) { fmt.Fprintln(c.w, s) }

func (c *Console) Rule()       { c.Println(strings.Repeat("-", ruleWidth)) }
func (c *Console) DoubleRule() { c.Println(strings.Repeat("=", ruleWidth)) }

func (c *Console) Step(msg string)    { c.Println(msg) }
func (c *Console) OK(msg string)      { c.Println("✅ " + msg) }
func (c *Console) Warn(msg string)    { c.Println("⚠️  " + msg) }
func (c *Console) Fail(msg string)    { c.Println("❌ " + msg) }
func (c *Console) Detail(msg string)  { c.Println(msg) }
func (c *Console) Section(msg string) { c.Println("\n" + msg) }

// Intro prints the program banner shown before anything else.
func (c *Console) Intro(p Probe) {
	c.Printf("%s %s Test Script", p.Icon(), p.Title())
	c.DoubleRule()
}

// Header prints the per-run header.
func (c *Console) Header(p Probe, imagePath, apiURL string) {
	c.Printf("%s Testing %s", p.Icon(), p.Title())
	c.Printf("📁 Image: %s", imagePath)
	c.Printf("🌐 API URL: %s", apiURL)
	c.Rule()
}

// Response prints the body as indented JSON, or verbatim if it cannot be indented.
func (c *Console) Response(body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(body), "", "  "); err != nil {
		c.Printf("📋 Response: %s", body)
		return
	}
	c.Printf("📋 Response: %s", buf.String())
}

// Banner prints the closing line chosen by the run's success.
func (c *Console) Banner(success bool) {
	c.Rule()
	if success {
		c.OK("Test completed successfully!")
		return
	}
	c.Fail("Test failed!")
}
