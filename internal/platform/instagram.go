package platform

type Instagram struct{}

func init() {
	Register(&Instagram{})
}

func (p *Instagram) GetName() string {
	return "instagram"
}

func (p *Instagram) GetMaxDuration() int {
	return 60
}

func (p *Instagram) GetMaxFileSizeMB() int {
	return 25
}

func (p *Instagram) GetMaxHeight() int {
	return 1080
}

func (p *Instagram) GetAudioCodec() string {
	return "aac"
}

func (p *Instagram) GetAudioBitrate() string {
	return "128k"
}

func (p *Instagram) GetOutputFormat() string {
	return "mp4"
}
