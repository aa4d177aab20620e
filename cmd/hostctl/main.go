// hostctl drives a matrix controller board over its serial protocol from a
// desktop machine: start/stop runs, push pattern presets, configure the
// camera trigger and dump the generated pattern.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tarm/serial"
)

var (
	portName string
	baudRate int
)

func main() {
	root := &cobra.Command{
		Use:   "hostctl",
		Short: "Control an LED matrix controller over serial",
	}
	root.PersistentFlags().StringVarP(&portName, "port", "p", "/dev/ttyACM0", "serial port device")
	root.PersistentFlags().IntVarP(&baudRate, "baud", "b", 9600, "baud rate")

	root.AddCommand(
		runCmd(),
		pauseCmd(),
		stopCmd(),
		idleCmd(),
		wakeCmd(),
		ledCmd(),
		patternCmd(),
		cameraCmd(),
		exportCmd(),
		watchCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openPort() (*serial.Port, error) {
	return serial.OpenPort(&serial.Config{
		Name:        portName,
		Baud:        baudRate,
		ReadTimeout: 2 * time.Second,
	})
}

// sendLines writes protocol lines and echoes the first status reply.
func sendLines(lines ...string) error {
	p, err := openPort()
	if err != nil {
		return err
	}
	defer p.Close()

	for _, l := range lines {
		if _, err := p.Write([]byte(l + "\n")); err != nil {
			return err
		}
	}
	r := bufio.NewReader(p)
	for {
		reply, err := r.ReadString('\n')
		if err != nil {
			return nil // board may be headless-quiet; not an error
		}
		reply = strings.TrimSpace(reply)
		if strings.HasPrefix(reply, "STATUS,") {
			fmt.Println(reply)
			return nil
		}
	}
}

func simpleCmd(use, short, line string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return sendLines(line)
		},
	}
}

func runCmd() *cobra.Command {
	return simpleCmd("run", "Start or resume the illumination sequence", "R")
}

func pauseCmd() *cobra.Command {
	return simpleCmd("pause", "Pause the sequence, keeping the current pixel lit", "h")
}

func stopCmd() *cobra.Command {
	return simpleCmd("stop", "Stop the sequence and blank the panel", "X")
}

func idleCmd() *cobra.Command {
	return simpleCmd("idle", "Put the board into idle mode", "i")
}

func wakeCmd() *cobra.Command {
	return simpleCmd("wake", "Wake the board from idle", "a")
}

func ledCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "led <x> <y> <color>",
		Short: "Light a single pixel (color is a 3-bit RGB mask, 0-7)",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return sendLines(fmt.Sprintf("L%s,%s,%s", args[0], args[1], args[2]))
		},
	}
}

func cameraCmd() *cobra.Command {
	var enabled bool
	var pre, pulse, post int

	cmd := &cobra.Command{
		Use:   "camera",
		Short: "Configure the camera trigger",
		RunE: func(*cobra.Command, []string) error {
			en := 0
			if enabled {
				en = 1
			}
			return sendLines(fmt.Sprintf("C S,%d,%d,%d,%d", en, pre, pulse, post))
		},
	}
	cmd.Flags().BoolVar(&enabled, "enabled", true, "enable triggering during runs")
	cmd.Flags().IntVar(&pre, "pre", 400, "pre-trigger settle delay (ms)")
	cmd.Flags().IntVar(&pulse, "pulse", 100, "trigger pulse width (ms)")
	cmd.Flags().IntVar(&post, "post", 1500, "post-trigger dwell (ms)")

	var width int
	test := &cobra.Command{
		Use:   "test",
		Short: "Fire a one-off test pulse",
		RunE: func(*cobra.Command, []string) error {
			return sendLines(fmt.Sprintf("C T,1,%d", width))
		},
	}
	test.Flags().IntVar(&width, "width", 100, "pulse width (ms)")
	cmd.AddCommand(test)
	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream board status lines to stdout",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			p, err := openPort()
			if err != nil {
				return err
			}
			defer p.Close()
			r := bufio.NewReader(p)
			for {
				line, err := r.ReadString('\n')
				if err != nil {
					continue // read timeout, keep listening
				}
				fmt.Print(line)
			}
		},
	}
}
