package feed

import (
	"strings"
	"testing"

	"github.com/pders01/flik/internal/movie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const channelFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
	<link rel="self" href="http://www.youtube.com/feeds/videos.xml?channel_id=UC_x5XG1OV2P6uZZ5FSM9Ttw"/>
	<id>yt:channel:_x5XG1OV2P6uZZ5FSM9Ttw</id>
	<yt:channelId>_x5XG1OV2P6uZZ5FSM9Ttw</yt:channelId>
	<title>Classic Cinema</title>
	<author>
		<name>Classic Cinema</name>
		<uri>https://www.youtube.com/channel/UC_x5XG1OV2P6uZZ5FSM9Ttw</uri>
	</author>
	<published>2015-03-01T00:00:00+00:00</published>
	<entry>
		<id>yt:video:dQw4w9WgXcQ</id>
		<yt:videoId>dQw4w9WgXcQ</yt:videoId>
		<yt:channelId>UC_x5XG1OV2P6uZZ5FSM9Ttw</yt:channelId>
		<title>Nosferatu (1922)</title>
		<link rel="alternate" href="https://www.youtube.com/watch?v=dQw4w9WgXcQ"/>
		<author>
			<name>Classic Cinema</name>
		</author>
		<published>2024-10-31T12:00:00+00:00</published>
		<updated>2024-11-01T12:00:00+00:00</updated>
		<media:group>
			<media:title>Nosferatu (1922)</media:title>
			<media:content url="https://www.youtube.com/v/dQw4w9WgXcQ?version=3" type="application/x-shockwave-flash" width="640" height="390"/>
			<media:thumbnail url="https://i2.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg" width="480" height="360"/>
			<media:description>A silent horror classic.</media:description>
		</media:group>
	</entry>
	<entry>
		<id>yt:video:abc_DEF-123</id>
		<title>Metropolis (1927)</title>
		<link rel="alternate" href="https://www.youtube.com/watch?v=abc_DEF-123"/>
		<published>2024-09-01T12:00:00+00:00</published>
	</entry>
	<entry>
		<id>yt:video:none</id>
		<title>Community post</title>
		<link rel="alternate" href="https://www.youtube.com/post/xyz"/>
	</entry>
</feed>`

func TestParser_ParseUploads(t *testing.T) {
	parser := NewParser()

	records, err := parser.ParseUploads(strings.NewReader(channelFeed), 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "dQw4w9WgXcQ", first.ID)
	assert.Equal(t, "Nosferatu (1922)", first.Title)
	assert.Equal(t, "A silent horror classic.", first.Description)
	assert.Equal(t, "Classic Cinema", first.Creator)
	assert.Equal(t, "UC_x5XG1OV2P6uZZ5FSM9Ttw", first.ChannelID)
	assert.Equal(t, "https://i2.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", first.Thumbnail)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", first.VideoURL)
	assert.Equal(t, "2024", first.Year)
	assert.Equal(t, movie.SourceYouTube, first.Source)

	// No yt:videoId extension: the id comes from the watch link.
	second := records[1]
	assert.Equal(t, "abc_DEF-123", second.ID)
	assert.Equal(t, "Classic Cinema", second.Creator)
	assert.Equal(t, movie.PlaceholderImage, second.ImageURL(""))
}

func TestParser_ParseUploadsLimit(t *testing.T) {
	parser := NewParser()

	records, err := parser.ParseUploads(strings.NewReader(channelFeed), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "dQw4w9WgXcQ", records[0].ID)
}

func TestParser_ParseUploadsInvalid(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseUploads(strings.NewReader("not a feed"), 5)
	assert.Error(t, err)
}

func TestParser_ParseUploadsEmptyFeed(t *testing.T) {
	parser := NewParser()

	records, err := parser.ParseUploads(strings.NewReader(`<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>Empty</title></feed>`), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
}
