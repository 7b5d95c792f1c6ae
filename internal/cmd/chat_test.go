package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchardai/visionlab/test/visiontest"
)

func TestChatOneShot(t *testing.T) {
	srv := visiontest.New(t)
	srv.ChatReply = "That is an orange."
	setOpenAIEnv(t, srv)

	img := filepath.Join(t.TempDir(), "fruit.png")
	writeTestPNG(t, img, 8, 8)

	out, err := executeCommand(t, "chat", "--image", img, "--prompt", "What fruit is this?")
	require.NoError(t, err)
	assert.Contains(t, out, "That is an orange.")

	require.Len(t, srv.ChatRequests, 1)
	msgs := srv.ChatRequests[0].Messages
	require.Len(t, msgs, 2)
	assert.Contains(t, string(msgs[0]), "helpful assistant")
	assert.Contains(t, string(msgs[1]), "What fruit is this?")
	assert.Contains(t, string(msgs[1]), "data:image/png;base64,")
}

func TestChatMissingImage(t *testing.T) {
	srv := visiontest.New(t)
	setOpenAIEnv(t, srv)

	_, err := executeCommand(t, "chat", "--image", filepath.Join(t.TempDir(), "nope.png"), "--prompt", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot read image")
}

func TestChatRequiresImageFlag(t *testing.T) {
	srv := visiontest.New(t)
	setOpenAIEnv(t, srv)

	img := filepath.Join(t.TempDir(), "fruit.png")
	writeTestPNG(t, img, 8, 8)

	// An unreadable image path fails before any service call.
	_, err := executeCommand(t, "chat", "--prompt", "hi", "--image", "")
	require.Error(t, err)
	assert.Empty(t, srv.ChatRequests)
}
