package ui

import (
	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
)

// copyToClipboard puts contents on the system clipboard. Failures are logged
// and otherwise ignored; yanking is best effort.
func copyToClipboard(contents string) {
	if err := clipboard.WriteAll(contents); err != nil {
		logrus.Warnf("Failed to copy to the clipboard: %v", err)
	}
}
