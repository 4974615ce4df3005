package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"fittlyfans/internal/models"
	"fittlyfans/internal/repository"
	"fittlyfans/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newContentServices(t *testing.T, db *gorm.DB) (*ContentService, *CommentService, *storage.MediaStore) {
	media := newMediaStore(t)
	contents := repository.NewContentRepository(db)
	return NewContentService(contents, media, storage.NewImageProcessor()),
		NewCommentService(repository.NewCommentRepository(db), contents),
		media
}

func TestContentService_AuthorRules(t *testing.T) {
	db := setupDB(t)
	svc, _, _ := newContentServices(t, db)
	ctx := context.Background()
	author := principal(seedUser(t, db, "author", models.RoleTrainer))
	other := principal(seedUser(t, db, "other", models.RoleSubscriber))
	admin := principal(seedUser(t, db, "root", models.RoleAdmin))

	_, err := svc.Create(ctx, author, CreateContentInput{Type: "story"})
	assertValidationError(t, err)
	_, err = svc.Create(ctx, author, CreateContentInput{Type: models.ContentText})
	assertValidationError(t, err)

	post, err := svc.Create(ctx, author, CreateContentInput{Type: models.ContentText, Description: "Rutina del lunes"})
	require.NoError(t, err)
	assert.Equal(t, "author", post.AuthorName)
	assert.Equal(t, models.RoleTrainer, post.AuthorRole)

	desc := "editado"
	_, err = svc.Update(ctx, other, post.ID, models.ContentPatch{Description: &desc})
	assertForbiddenError(t, err)
	updated, err := svc.Update(ctx, author, post.ID, models.ContentPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "editado", updated.Description)

	found, err := svc.Search(ctx, "EDIT", 10, 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	assertForbiddenError(t, svc.Delete(ctx, other, post.ID))
	require.NoError(t, svc.Delete(ctx, admin, post.ID))
	_, err = svc.Get(ctx, post.ID)
	assertCode(t, err, models.CodeNotFound)
}

func TestContentService_AttachImageConvertsToWebP(t *testing.T) {
	db := setupDB(t)
	svc, _, media := newContentServices(t, db)
	ctx := context.Background()
	author := principal(seedUser(t, db, "author", models.RoleTrainer))

	post, err := svc.Create(ctx, author, CreateContentInput{Type: models.ContentImage, Description: "antes y despues"})
	require.NoError(t, err)

	_, err = svc.AttachImage(ctx, author, post.ID, []byte("not an image"))
	assertValidationError(t, err)
	_, err = svc.AttachImage(ctx, author, post.ID, nil)
	assertValidationError(t, err)

	first, err := svc.AttachImage(ctx, author, post.ID, pngBytes(t, 40, 20))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.MediaURL, "images/"))
	assert.True(t, strings.HasSuffix(first.MediaURL, ".webp"))
	assert.True(t, media.Exists(first.MediaURL))

	second, err := svc.AttachImage(ctx, author, post.ID, pngBytes(t, 10, 10))
	require.NoError(t, err)
	assert.NotEqual(t, first.MediaURL, second.MediaURL)
	assert.False(t, media.Exists(first.MediaURL))
}

func TestCommentService_Rules(t *testing.T) {
	db := setupDB(t)
	contents, comments, _ := newContentServices(t, db)
	ctx := context.Background()
	author := principal(seedUser(t, db, "author", models.RoleTrainer))
	fan := principal(seedUser(t, db, "fan", models.RoleSubscriber))
	stranger := principal(seedUser(t, db, "stranger", models.RoleGeneric))

	post, err := contents.Create(ctx, author, CreateContentInput{Type: models.ContentText, Description: "hola"})
	require.NoError(t, err)

	_, err = comments.CreateComment(ctx, fan, CreateCommentInput{ContentID: 999, Text: "hi"})
	assertCode(t, err, models.CodeNotFound)
	_, err = comments.CreateComment(ctx, fan, CreateCommentInput{ContentID: post.ID, Text: "  "})
	assertValidationError(t, err)
	_, err = comments.CreateComment(ctx, fan, CreateCommentInput{ContentID: post.ID, Text: strings.Repeat("x", maxCommentLen+1)})
	assertValidationError(t, err)

	c1, err := comments.CreateComment(ctx, fan, CreateCommentInput{ContentID: post.ID, Text: "genial"})
	require.NoError(t, err)
	assert.Equal(t, "fan", c1.AuthorName)
	c2, err := comments.CreateComment(ctx, fan, CreateCommentInput{ContentID: post.ID, Text: "otra"})
	require.NoError(t, err)

	_, err = comments.UpdateComment(ctx, author, c1.ID, "hacked")
	assertForbiddenError(t, err)
	edited, err := comments.UpdateComment(ctx, fan, c1.ID, "genial!")
	require.NoError(t, err)
	assert.Equal(t, "genial!", edited.Text)

	assertForbiddenError(t, comments.DeleteComment(ctx, stranger, c1.ID))
	require.NoError(t, comments.DeleteComment(ctx, author, c1.ID), "content author may moderate")
	require.NoError(t, comments.DeleteComment(ctx, fan, c2.ID))

	list, err := comments.ListByContent(ctx, post.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = comments.ListByContent(ctx, 999, 10, 0)
	assertCode(t, err, models.CodeNotFound)
}
