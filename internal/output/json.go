package output

import (
	"encoding/json"

	"github.com/berkaydemir/netraven/internal/scan"
)

// JSONFormatter formats a ScanResult as JSON, ported from the teacher's
// JSONFormatter and retargeted to ScanResult's host/port shape.
type JSONFormatter struct {
	config Config
	pretty bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(config Config) *JSONFormatter {
	return &JSONFormatter{config: config, pretty: true}
}

// NewJSONFormatterCompact creates a JSON formatter with compact output.
func NewJSONFormatterCompact(config Config) *JSONFormatter {
	return &JSONFormatter{config: config, pretty: false}
}

// SetPretty enables or disables pretty-printing.
func (f *JSONFormatter) SetPretty(pretty bool) { f.pretty = pretty }

func (f *JSONFormatter) Format(result scan.ScanResult) ([]byte, error) {
	out := f.toJSONOutput(result)
	if f.pretty {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

// JSONOutput is the JSON-serializable representation of a scan result.
type JSONOutput struct {
	Status  string     `json:"status"`
	Elapsed string     `json:"elapsed"`
	Hosts   []JSONHost `json:"hosts"`
}

// JSONHost is one live host and its probed ports.
type JSONHost struct {
	IP    string     `json:"ip"`
	TTL   uint8      `json:"ttl"`
	Ports []JSONPort `json:"ports,omitempty"`
}

// JSONPort is one probed port's classification.
type JSONPort struct {
	Port    uint16 `json:"port"`
	Status  string `json:"status"`
	Service string `json:"service"`
}

func (f *JSONFormatter) toJSONOutput(result scan.ScanResult) *JSONOutput {
	out := &JSONOutput{
		Status:  result.Status.String(),
		Elapsed: result.Elapsed.String(),
		Hosts:   make([]JSONHost, 0, len(result.Hosts)),
	}

	for _, h := range result.Hosts {
		jh := JSONHost{IP: h.IP.String(), TTL: h.TTL}
		for _, p := range result.Ports[h.IP.String()] {
			if !f.config.ShowClosed && p.Status != scan.Open {
				continue
			}
			jh.Ports = append(jh.Ports, JSONPort{
				Port:    p.Port,
				Status:  p.Status.String(),
				Service: p.Service,
			})
		}
		out.Hosts = append(out.Hosts, jh)
	}

	return out
}

func (f *JSONFormatter) ContentType() string   { return "application/json" }
func (f *JSONFormatter) FileExtension() string { return "json" }
