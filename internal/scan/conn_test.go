package scan

import (
	"errors"
	"net"
	"testing"
)

func TestOpenRawConnsRejectsUnassignedSrcIP(t *testing.T) {
	_, err := openRawConns(ScanSetting{
		ScanType: IcmpPingScan,
		SrcIP:    net.ParseIP("203.0.113.250"), // RFC 5737 doc range, never locally assigned
	})
	if !errors.Is(err, ErrInterfaceNotFound) {
		t.Errorf("err = %v, want ErrInterfaceNotFound", err)
	}
}
