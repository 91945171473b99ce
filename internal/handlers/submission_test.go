package handlers

import (
	"context"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codecomp-bot/internal/database/models"
)

func photoMessage(from int64, chatID int64, messageID int, caption string) telego.Message {
	return telego.Message{
		MessageID: messageID,
		From:      &telego.User{ID: from, Username: "someone"},
		Chat:      telego.Chat{ID: chatID},
		Caption:   caption,
		Photo: []telego.PhotoSize{
			{FileID: "small"},
			{FileID: "large"},
		},
	}
}

func TestHandlePhotoCreatesPendingSubmission(t *testing.T) {
	s := newHandlerSuite(t)
	msg := photoMessage(testMemberID, testChallengeChat, 42, "Challenge WEB-001 done, see photo")

	require.NoError(t, s.handler.HandlePhoto(context.Background(), s.bot, msg))

	require.Equal(t, 1, s.subs.created)
	sub := s.subs.subs[0]
	assert.Equal(t, "SUB--100111-42", sub.ID)
	assert.Equal(t, "Ducks", sub.Team)
	assert.True(t, sub.IsPending())
	assert.Equal(t, []string{"large"}, sub.MediaFileIDs)
	assert.Equal(t, models.MessageRef{ChatID: testChallengeChat, MessageID: 42}, sub.Origin)

	// Receipt is acknowledged with a reaction, and the summary refreshes.
	s.bot.AssertCalled(t, "SetMessageReaction", mock.Anything, mock.Anything)
	assert.Equal(t, 1, s.reconciler.reconcileCalls)
}

func TestHandlePhotoIgnoresUnrelatedCaptions(t *testing.T) {
	s := newHandlerSuite(t)
	msg := photoMessage(testMemberID, testChallengeChat, 42, "look at this sunset")

	require.NoError(t, s.handler.HandlePhoto(context.Background(), s.bot, msg))
	assert.Zero(t, s.subs.created)
}

func TestHandlePhotoIgnoresOtherChats(t *testing.T) {
	s := newHandlerSuite(t)
	msg := photoMessage(testMemberID, 12345, 42, "challenge WEB-001 done")

	require.NoError(t, s.handler.HandlePhoto(context.Background(), s.bot, msg))
	assert.Zero(t, s.subs.created)
}

func TestHandlePhotoDedupesByOrigin(t *testing.T) {
	s := newHandlerSuite(t)
	msg := photoMessage(testMemberID, testChallengeChat, 42, "challenge WEB-001 done")

	require.NoError(t, s.handler.HandlePhoto(context.Background(), s.bot, msg))
	require.NoError(t, s.handler.HandlePhoto(context.Background(), s.bot, msg))

	assert.Equal(t, 1, s.subs.created)
}

func TestHandlePhotoRejectsUnknownSender(t *testing.T) {
	s := newHandlerSuite(t)
	msg := photoMessage(999, testChallengeChat, 42, "challenge WEB-001 done")

	require.NoError(t, s.handler.HandlePhoto(context.Background(), s.bot, msg))

	assert.Zero(t, s.subs.created)
	reply := s.bot.sentContaining("not on the team roster")
	if assert.NotNil(t, reply) {
		require.NotNil(t, reply.ReplyParameters)
		assert.Equal(t, 42, reply.ReplyParameters.MessageID)
	}
}

func TestHandlePhotoSkipsAlbumMessages(t *testing.T) {
	s := newHandlerSuite(t)
	msg := photoMessage(testMemberID, testChallengeChat, 42, "challenge WEB-001 done")
	msg.MediaGroupID = "album-1"

	require.NoError(t, s.handler.HandlePhoto(context.Background(), s.bot, msg))
	assert.Zero(t, s.subs.created)
}

func TestMediaGroupSubmissionCollectsAllPhotos(t *testing.T) {
	s := newHandlerSuite(t)
	first := photoMessage(testMemberID, testChallengeChat, 42, "")
	second := photoMessage(testMemberID, testChallengeChat, 43, "challenge ART-001 mascot time")
	second.Photo = []telego.PhotoSize{{FileID: "second-large"}}

	require.NoError(t, s.handler.HandleMediaGroupSubmission(context.Background(), s.bot, []telego.Message{first, second}))

	require.Equal(t, 1, s.subs.created)
	sub := s.subs.subs[0]
	assert.Equal(t, []string{"large", "second-large"}, sub.MediaFileIDs)
	assert.Equal(t, models.MessageRef{ChatID: testChallengeChat, MessageID: 42}, sub.Origin)
}

func TestAdminSubmitRecordsForTeam(t *testing.T) {
	s := newHandlerSuite(t)
	msg := photoMessage(testAdminID, testReviewChat, 42, "admin submit geese finished the mural on paper")

	require.NoError(t, s.handler.HandlePhoto(context.Background(), s.bot, msg))

	require.Equal(t, 1, s.subs.created)
	sub := s.subs.subs[0]
	assert.Equal(t, "SUB-ADMIN--100222-42", sub.ID)
	assert.Equal(t, "Geese", sub.Team)
	assert.Equal(t, "finished the mural on paper", sub.Description)
	assert.NotNil(t, s.bot.sentContaining("Recorded a submission for Geese"))
}

func TestAdminSubmitDeniedForMembers(t *testing.T) {
	s := newHandlerSuite(t)
	msg := photoMessage(testMemberID, testChallengeChat, 42, "admin submit Geese sneaky points")

	require.NoError(t, s.handler.HandlePhoto(context.Background(), s.bot, msg))

	assert.Zero(t, s.subs.created)
	assert.NotNil(t, s.bot.sentContaining("only available to admins"))
}

func TestAdminSubmitUsageOnMissingDescription(t *testing.T) {
	s := newHandlerSuite(t)
	msg := photoMessage(testAdminID, testReviewChat, 42, "admin submit Geese")

	require.NoError(t, s.handler.HandlePhoto(context.Background(), s.bot, msg))

	assert.Zero(t, s.subs.created)
	assert.NotNil(t, s.bot.sentContaining("admin submit <team> <description>"))
}

func TestTextSubmissionGetsPhotoReminder(t *testing.T) {
	s := newHandlerSuite(t)
	msg := telego.Message{
		MessageID: 42,
		From:      &telego.User{ID: testMemberID},
		Chat:      telego.Chat{ID: testChallengeChat},
		Text:      "challenge WEB-001 we did it",
	}

	require.NoError(t, s.handler.HandleText(context.Background(), s.bot, msg))

	reply := s.bot.sentContaining("need a photo as proof")
	if assert.NotNil(t, reply) {
		require.NotNil(t, reply.ReplyParameters)
		assert.Equal(t, 42, reply.ReplyParameters.MessageID)
	}
	assert.Zero(t, s.subs.created)
}

func TestTextRoutedToReviewManagerFirst(t *testing.T) {
	s := newHandlerSuite(t)
	s.review.reasonTaken = true
	msg := telego.Message{
		MessageID: 42,
		From:      &telego.User{ID: testAdminID},
		Chat:      telego.Chat{ID: testAdminID},
		Text:      "challenge text that is really a rejection reason",
	}

	require.NoError(t, s.handler.HandleText(context.Background(), s.bot, msg))
	assert.Nil(t, s.bot.sentContaining("need a photo"))
}
