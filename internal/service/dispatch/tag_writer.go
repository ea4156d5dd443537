package dispatch

//go:generate $MOCKGEN -source=tag_writer.go -destination=mocks/tag_writer_mock.go

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/oshokin/id3v2/v2"

	"github.com/oshokin/mediagrab/internal/client/ytdlp"
	"github.com/oshokin/mediagrab/internal/constants"
	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/utils"
)

// TagWriter defines the interface for writing metadata tags to extracted audio files.
type TagWriter interface {
	WriteTags(ctx context.Context, req *WriteTagsRequest) error
}

// WriteTagsRequest contains parameters for writing metadata to audio files.
type WriteTagsRequest struct {
	// FilePath is the audio file to tag; its extension selects the tag format.
	FilePath string
	// CoverPath is an optional image embedded as the front cover.
	CoverPath string
	// Metadata is the probed description of the source.
	Metadata *ytdlp.MediaMetadata
	// SourceURL is stored in the comment field.
	SourceURL string
}

// TagWriterImpl writes ID3v2 tags to MP3 files and Vorbis comments to FLAC files.
type TagWriterImpl struct{}

// imageMetadata contains image data and its MIME type.
type imageMetadata struct {
	data     []byte
	mimeType string
}

// coverExtensions are the thumbnail extensions looked up next to a media file, in order of preference.
//
//nolint:gochecknoglobals // Static lookup order.
var coverExtensions = []string{constants.ExtensionJPG, constants.ExtensionPNG, constants.ExtensionWEBP}

// NewTagWriter creates a new TagWriter instance.
func NewTagWriter() TagWriter {
	return new(TagWriterImpl)
}

// WriteTags writes title, artist, date and source URL to the file, embedding the cover when given.
func (tw *TagWriterImpl) WriteTags(ctx context.Context, req *WriteTagsRequest) error {
	if req.FilePath == "" {
		return ErrEmptyFilePath
	}

	var image *imageMetadata

	if req.CoverPath != "" {
		imageData, err := os.ReadFile(filepath.Clean(req.CoverPath))
		if err != nil {
			return err
		}

		image = &imageMetadata{
			data:     imageData,
			mimeType: utils.ImageMimeType(req.CoverPath),
		}
	}

	switch strings.ToLower(filepath.Ext(req.FilePath)) {
	case constants.ExtensionMP3:
		return tw.writeMP3Tags(req, image)
	case constants.ExtensionFLAC:
		return tw.writeFLACTags(ctx, req, image)
	default:
		return fmt.Errorf("%w: '%s'", ErrUnsupportedTagFormat, filepath.Ext(req.FilePath))
	}
}

// FindCover returns the thumbnail yt-dlp wrote next to a media file, or an empty string.
func FindCover(mediaPath string) string {
	for _, ext := range coverExtensions {
		candidate := utils.SetFileExtension(mediaPath, ext, true)

		if isExist, err := utils.IsFileExist(candidate); err == nil && isExist {
			return candidate
		}
	}

	return ""
}

func (tw *TagWriterImpl) writeFLACTags(ctx context.Context, req *WriteTagsRequest, image *imageMetadata) error {
	// Parse the FLAC file.
	f, err := flac.ParseFile(filepath.Clean(req.FilePath))
	if err != nil {
		return err
	}

	// Replace any existing Vorbis comment block.
	commentIndex := -1

	for idx, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			commentIndex = idx

			break
		}
	}

	tag := flacvorbis.New()

	for k, v := range tagValues(req) {
		if v == "" {
			continue
		}

		if err = tag.Add(k, v); err != nil {
			return err
		}
	}

	tagMeta := tag.Marshal()
	if commentIndex >= 0 {
		f.Meta[commentIndex] = &tagMeta
	} else {
		f.Meta = append(f.Meta, &tagMeta)
	}

	if image != nil {
		picture, pictureErr := flacpicture.NewFromImageData(
			flacpicture.PictureTypeFrontCover, "", image.data, image.mimeType)
		if pictureErr != nil {
			logger.Errorf(ctx, "Failed to embed image to FLAC: %v", pictureErr)
		} else {
			pictureMeta := picture.Marshal()
			f.Meta = append(f.Meta, &pictureMeta)
		}
	}

	return f.Save(req.FilePath)
}

func (tw *TagWriterImpl) writeMP3Tags(req *WriteTagsRequest, image *imageMetadata) error {
	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false (parsing disabled).
	tag, err := id3v2.Open(req.FilePath, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}

	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	values := tagValues(req)
	tag.SetTitle(values["TITLE"])
	tag.SetArtist(values["ARTIST"])

	if year := values["YEAR"]; year != "" {
		tag.SetYear(year)
	}

	if req.SourceURL != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    id3v2.EnglishISO6392Code,
			Description: "Source",
			Text:        req.SourceURL,
		})
	}

	if image != nil {
		//nolint:exhaustruct // Description field intentionally empty for cover images.
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    image.mimeType,
			PictureType: id3v2.PTFrontCover,
			Picture:     image.data,
		})
	}

	return tag.Save()
}

// tagValues maps the metadata to Vorbis comment names.
func tagValues(req *WriteTagsRequest) map[string]string {
	const yearLength = 4

	values := map[string]string{
		"COMMENT": req.SourceURL,
	}

	if req.Metadata == nil {
		return values
	}

	values["TITLE"] = req.Metadata.Title
	values["ARTIST"] = req.Metadata.Uploader
	values["DATE"] = req.Metadata.FormattedUploadDate()

	if len(req.Metadata.UploadDate) >= yearLength {
		values["YEAR"] = req.Metadata.UploadDate[:yearLength]
	}

	return values
}
