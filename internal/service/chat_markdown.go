package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bodhium/workflow/internal/domain"
)

// The chatgpt worker writes its answers as markdown documents instead of
// JSON, following a fixed layout:
//
//	**Query:** <text>
//	**Timestamp:** <iso-8601>
//	## Response Content
//	<structural line>
//	<body...>
//	---
//
// parseChatMarkdown reconstructs a ChatResult from that layout in a single
// forward pass.

const (
	chatModelLabel    = "ChatGPT"
	chatSuccessStatus = "success"

	queryMarker     = "**Query:**"
	timestampMarker = "**Timestamp:**"
	bodyHeading     = "## Response Content"
	bodyEndMarker   = "---"
)

var chatQueryIDPattern = regexp.MustCompile(`chatgpt_query_(\d+)\.md`)

// markdown scanner states
type chatScanState int

const (
	chatScanMarkers  chatScanState = iota // looking for query/timestamp/body heading
	chatScanBodySkip                      // skipping the structural line after the heading
	chatScanBody                          // collecting body lines
	chatScanDone
)

// parseChatMarkdown synthesizes a result record from a chatgpt markdown
// artifact. Content holds the extracted body; FormattedMarkdown keeps the
// entire source document. The parser never fails: missing markers simply
// leave their fields empty.
func parseChatMarkdown(jobID, productID, fileName, doc string) *domain.ChatResult {
	result := &domain.ChatResult{
		JobID:             jobID,
		ProductID:         productID,
		QueryID:           chatQueryID(fileName),
		Model:             chatModelLabel,
		FormattedMarkdown: doc,
		Status:            chatSuccessStatus,
	}

	var body []string
	state := chatScanMarkers

	for _, line := range strings.Split(doc, "\n") {
		switch state {
		case chatScanMarkers:
			trimmed := strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(trimmed, queryMarker):
				result.Query = strings.TrimSpace(strings.TrimPrefix(trimmed, queryMarker))
			case strings.HasPrefix(trimmed, timestampMarker):
				result.Timestamp = strings.TrimSpace(strings.TrimPrefix(trimmed, timestampMarker))
			case trimmed == bodyHeading:
				state = chatScanBodySkip
			}
		case chatScanBodySkip:
			// body begins two lines after the heading
			state = chatScanBody
		case chatScanBody:
			if strings.HasPrefix(line, bodyEndMarker) {
				state = chatScanDone
				break
			}
			body = append(body, line)
		}
		if state == chatScanDone {
			break
		}
	}

	result.Content = strings.TrimSpace(strings.Join(body, "\n"))
	return result
}

// chatQueryID extracts the numeric query id from a chatgpt artifact filename.
// Unmatched filenames fall back to 1; that default predates this service and
// downstream consumers depend on it.
func chatQueryID(fileName string) int {
	m := chatQueryIDPattern.FindStringSubmatch(fileName)
	if m == nil {
		return 1
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 1
	}
	return id
}
