package platform

type Reddit struct{}

func init() {
	Register(&Reddit{})
}

func (p *Reddit) GetName() string {
	return "reddit"
}

func (p *Reddit) GetMaxDuration() int {
	return 900
}

func (p *Reddit) GetMaxFileSizeMB() int {
	return 1024
}

func (p *Reddit) GetMaxHeight() int {
	return 1080
}

func (p *Reddit) GetAudioCodec() string {
	return "aac"
}

func (p *Reddit) GetAudioBitrate() string {
	return "192k"
}

func (p *Reddit) GetOutputFormat() string {
	return "mp4"
}
