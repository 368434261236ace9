//go:build windows

package publisher

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var errNoCompany = errors.New("no CompanyName in version resource")

// Fallback string tables: US English with Unicode and Windows-1252 code pages.
var fallbackTables = []string{"040904b0", "040904e4"}

func companyName(path string) (string, error) {
	size, err := windows.GetFileVersionInfoSize(path, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get version info size: %w", err)
	}
	if size == 0 {
		return "", errNoCompany
	}

	buf := make([]byte, size)
	block := unsafe.Pointer(&buf[0])
	if err := windows.GetFileVersionInfo(path, 0, size, block); err != nil {
		return "", fmt.Errorf("failed to get version info: %w", err)
	}

	var tables []string
	var trans unsafe.Pointer
	var transLen uint32
	if err := windows.VerQueryValue(block, `\VarFileInfo\Translation`, unsafe.Pointer(&trans), &transLen); err == nil && transLen >= 4 {
		pair := (*[2]uint16)(trans)
		tables = append(tables, fmt.Sprintf("%04x%04x", pair[0], pair[1]))
	}
	tables = append(tables, fallbackTables...)

	for _, table := range tables {
		var value unsafe.Pointer
		var n uint32
		sub := `\StringFileInfo\` + table + `\CompanyName`
		if err := windows.VerQueryValue(block, sub, unsafe.Pointer(&value), &n); err != nil || n == 0 {
			continue
		}
		return windows.UTF16PtrToString((*uint16)(value)), nil
	}
	return "", errNoCompany
}
