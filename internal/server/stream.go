package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"
)

// handleStream serves MJPEG frames from the capture source. Useful as a
// lightweight preview while a live session runs; when the camera is not
// open the stream simply produces no frames.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	src := s.app.Source()

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		if !src.IsOpen() {
			time.Sleep(250 * time.Millisecond)
			continue
		}

		frame, _, err := src.ReadFrame()
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		buf, err := gocv.IMEncode(".jpg", *frame)
		frame.Close()
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(66 * time.Millisecond) // ~15 FPS
	}
}
