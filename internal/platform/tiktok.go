package platform

type TikTok struct{}

func init() {
	Register(&TikTok{})
}

func (p *TikTok) GetName() string {
	return "tiktok"
}

func (p *TikTok) GetMaxDuration() int {
	return 180
}

func (p *TikTok) GetMaxFileSizeMB() int {
	return 287
}

func (p *TikTok) GetMaxHeight() int {
	return 1920
}

func (p *TikTok) GetAudioCodec() string {
	return "aac"
}

func (p *TikTok) GetAudioBitrate() string {
	return "128k"
}

func (p *TikTok) GetOutputFormat() string {
	return "mp4"
}
