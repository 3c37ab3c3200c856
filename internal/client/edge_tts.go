package client

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nvoisard/bilingo/internal/errors"
	"github.com/nvoisard/bilingo/internal/lang"
)

const (
	edgeTTSEndpoint = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"
	edgeTTSToken    = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	edgeTTSFormat   = "audio-24khz-48kbitrate-mono-mp3"
)

var ssmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// EdgeTTSClient synthesizes speech through the Edge read-aloud
// websocket service. The service is keyed by a public consumer token,
// so no account credentials are involved.
type EdgeTTSClient struct {
	dialer *websocket.Dialer
}

// NewEdgeTTSClient creates an Edge TTS client.
func NewEdgeTTSClient() *EdgeTTSClient {
	return &EdgeTTSClient{
		dialer: &websocket.Dialer{HandshakeTimeout: 15 * time.Second},
	}
}

// Synthesize renders text in the neural voice registered for the
// language and returns MP3 bytes.
func (c *EdgeTTSClient) Synthesize(ctx context.Context, text string, language lang.Code) ([]byte, error) {
	voice := lang.EdgeVoice(language)
	if voice == "" {
		return nil, errors.New(errors.ErrTTSService, "no voice registered for language: "+string(language))
	}

	requestID := strings.ReplaceAll(uuid.NewString(), "-", "")
	wsURL := fmt.Sprintf("%s?TrustedClientToken=%s&ConnectionId=%s", edgeTTSEndpoint, edgeTTSToken, requestID)

	header := http.Header{}
	header.Set("Origin", "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold")
	header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0")

	conn, _, err := c.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to edge tts: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	} else {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}

	ts := time.Now().UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")

	configMsg := "X-Timestamp:" + ts + "\r\n" +
		"Content-Type:application/json; charset=utf-8\r\n" +
		"Path:speech.config\r\n\r\n" +
		`{"context":{"synthesis":{"audio":{"metadataoptions":{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},"outputFormat":"` + edgeTTSFormat + `"}}}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(configMsg)); err != nil {
		return nil, fmt.Errorf("failed to send speech config: %w", err)
	}

	ssml := fmt.Sprintf(
		"<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='%s'>"+
			"<voice name='%s'><prosody pitch='+0Hz' rate='+0%%' volume='+0%%'>%s</prosody></voice></speak>",
		lang.Locale(language), voice, ssmlEscaper.Replace(text))
	ssmlMsg := "X-RequestId:" + requestID + "\r\n" +
		"Content-Type:application/ssml+xml\r\n" +
		"X-Timestamp:" + ts + "\r\n" +
		"Path:ssml\r\n\r\n" + ssml
	if err := conn.WriteMessage(websocket.TextMessage, []byte(ssmlMsg)); err != nil {
		return nil, fmt.Errorf("failed to send ssml: %w", err)
	}

	// Audio arrives as binary frames (2-byte header length, then frame
	// headers, then MP3 data) until a text frame signals turn.end.
	var audio []byte
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("synthesis stream broken: %w", err)
		}

		switch msgType {
		case websocket.TextMessage:
			if strings.Contains(string(data), "Path:turn.end") {
				if len(audio) == 0 {
					return nil, errors.New(errors.ErrTTSService, "edge tts produced no audio")
				}
				return audio, nil
			}
		case websocket.BinaryMessage:
			if len(data) < 2 {
				continue
			}
			headerLen := int(binary.BigEndian.Uint16(data[:2]))
			if len(data) < 2+headerLen {
				continue
			}
			if strings.Contains(string(data[2:2+headerLen]), "Path:audio") {
				audio = append(audio, data[2+headerLen:]...)
			}
		}
	}
}
