package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"go.uber.org/zap"
)

// lineNotifier writes analysis failures as a single line.
type lineNotifier struct {
	out io.Writer
}

func (n lineNotifier) Notify(message string) {
	fmt.Fprintln(n.out, color.RedString(message))
}

// dialogNotifier blocks until the operator acknowledges the message.
type dialogNotifier struct {
	input  *stdinPump
	logger *zap.Logger
}

func (n dialogNotifier) Notify(message string) {
	stdin := n.input.reader()
	defer stdin.Close()

	dialog := promptui.Select{
		Label: color.RedString(message),
		Items: []string{"OK"},
		Stdin: stdin,
	}

	if _, _, err := dialog.Run(); err != nil {
		n.logger.Debug("notification dismissed", zap.Error(err))
	}
}
