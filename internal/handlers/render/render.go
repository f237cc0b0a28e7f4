package render

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"DENAC/internal/services"
)

// Handler draws one frame server-side and returns it as JPEG (or PNG with
// format=png). The frame is chosen by progress=p or frame=i.
func Handler(svc *services.Services, lg *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		index := 1
		switch {
		case q.Get("frame") != "":
			n, err := strconv.Atoi(q.Get("frame"))
			if err != nil || n < 1 || n > svc.Mapper.Count() {
				http.Error(w, "frame out of range", http.StatusBadRequest)
				return
			}
			index = n
		case q.Get("progress") != "":
			p, err := strconv.ParseFloat(q.Get("progress"), 64)
			if err != nil {
				http.Error(w, "invalid progress", http.StatusBadRequest)
				return
			}
			index = svc.Mapper.Index(p)
		}

		if _, ok := svc.Frames.Frame(index); !ok {
			http.Error(w, "frame not loaded", http.StatusServiceUnavailable)
			return
		}

		rd := svc.NewRenderer()
		defer rd.Release()
		rd.Draw(index)

		var buf bytes.Buffer
		contentType := "image/jpeg"
		var err error
		if q.Get("format") == "png" {
			contentType = "image/png"
			err = rd.EncodePNG(&buf)
		} else {
			err = rd.EncodeJPEG(&buf, 90)
		}
		if err != nil {
			lg.Error("encode frame", "frame", index, "error", err)
			http.Error(w, "encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Frame-Index", strconv.Itoa(index))
		_, _ = w.Write(buf.Bytes())
	}
}
