package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// 100 ms of 16 kHz mono s16le audio per frame.
const transcribeChunk = 3200

func transcribeCmd(cfgPath *string) *cobra.Command {
	var realtime bool
	cmd := &cobra.Command{
		Use:   "transcribe <pcm-file>",
		Short: "Stream raw PCM audio (16 kHz mono s16le) through a live transcription session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			var in io.Reader
			if args[0] == "-" {
				in = os.Stdin
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			sess, err := a.client.Live(ctx, func(text string) {
				fmt.Print(text)
			})
			if err != nil {
				return err
			}
			defer sess.Close()

			buf := make([]byte, transcribeChunk)
			for {
				n, err := io.ReadFull(in, buf)
				if n > 0 {
					if err := sess.SendAudio(ctx, buf[:n]); err != nil {
						return err
					}
				}
				if err == io.EOF || err == io.ErrUnexpectedEOF {
					break
				}
				if err != nil {
					return err
				}
				if realtime {
					time.Sleep(100 * time.Millisecond)
				}
			}

			// Give trailing transcriptions a moment to arrive.
			select {
			case <-ctx.Done():
			case <-time.After(2 * time.Second):
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().BoolVar(&realtime, "realtime", false, "pace the upload at recording speed")
	return cmd
}
