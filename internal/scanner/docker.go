package scanner

import (
	"encoding/json"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"macsweep/internal/fsutil"
	"macsweep/internal/logger"
	"macsweep/internal/types"
)

const (
	dockerShortIDLength = 12
	dockerNameLimit     = 50
)

// execCommand is a variable to allow stubbing docker invocations in
// tests.
var execCommand = exec.Command

// DockerTarget enumerates reclaimable docker disk usage: images,
// volumes and the build cache. Items referenced by a container are
// marked process-locked so job preparation skips them.
type DockerTarget struct {
	category types.Category
}

func NewDockerTarget(cat types.Category) *DockerTarget {
	return &DockerTarget{category: cat}
}

func (s *DockerTarget) Category() types.Category {
	return s.category
}

func (s *DockerTarget) IsAvailable() bool {
	if !fsutil.CommandExists("docker") {
		logger.Debug("docker command not found")
		return false
	}
	if err := execCommand("docker", "version").Run(); err != nil {
		logger.Warn("docker daemon not running", "error", err)
		return false
	}
	return true
}

type dockerDfOutput struct {
	Type        string `json:"Type"`
	Reclaimable string `json:"Reclaimable"`
}

type dockerDfVerbose struct {
	Images     []dockerDfImage     `json:"Images"`
	Containers []dockerDfContainer `json:"Containers"`
	Volumes    []dockerDfVolume    `json:"Volumes"`
}

type dockerDfImage struct {
	ID         string `json:"ID"`
	Repository string `json:"Repository"`
	Tag        string `json:"Tag"`
	Size       string `json:"Size"`
	UniqueSize string `json:"UniqueSize"`
}

type dockerDfContainer struct {
	Image  string `json:"Image"`
	Names  string `json:"Names"`
	Mounts string `json:"Mounts"`
}

type dockerDfVolume struct {
	Name string `json:"Name"`
	Size string `json:"Size"`
}

func (s *DockerTarget) Scan() (*types.ScanResult, error) {
	result := types.NewScanResult(s.category)

	if !s.IsAvailable() {
		return result, nil
	}

	verbose, err := s.fetchVerboseDf()
	if err != nil {
		result.Error = err
		return result, nil
	}

	usedImages, usedVolumes := dockerUsage(verbose)

	for _, img := range dedupeImages(verbose.Images) {
		label := img.label
		item := types.CleanableItem{
			Path:      "docker:image:" + img.id,
			Size:      img.size,
			FileCount: 1,
			Name:      "Image: " + truncateName(label, dockerNameLimit),
		}
		if holder, ok := usedImages[img.id]; ok {
			item.Status = types.ItemStatusProcessLocked
			item.DisplayName = item.Name + " [used by " + holder + "]"
		}
		result.AddItem(item)
	}

	for _, v := range verbose.Volumes {
		if v.Name == "" {
			continue
		}
		size := parseDockerSize(v.Size)
		if size == 0 {
			continue
		}
		item := types.CleanableItem{
			Path:      "docker:volume:" + v.Name,
			Size:      size,
			FileCount: 1,
			Name:      "Volume: " + truncateName(v.Name, dockerNameLimit),
		}
		if holder, ok := usedVolumes[v.Name]; ok {
			item.Status = types.ItemStatusProcessLocked
			item.DisplayName = item.Name + " [used by " + holder + "]"
		}
		result.AddItem(item)
	}

	if size := s.fetchBuildCacheSize(); size > 0 {
		result.AddItem(types.CleanableItem{
			Path:      "docker:build-cache",
			Size:      size,
			FileCount: 1,
			Name:      "Docker Build Cache",
		})
	}

	logger.Info("docker scan completed",
		"items", len(result.Items),
		"total_size", result.TotalSize)

	return result, nil
}

// Clean removes each selected docker resource with the matching docker
// subcommand.
func (s *DockerTarget) Clean(items []types.CleanableItem) (*types.CleanResult, error) {
	result := types.NewCleanResult(s.category)

	for _, item := range items {
		var cmd *exec.Cmd
		switch {
		case strings.HasPrefix(item.Path, "docker:image:"):
			if id := strings.TrimPrefix(item.Path, "docker:image:"); id != "" {
				cmd = execCommand("docker", "image", "rm", id)
			}
		case strings.HasPrefix(item.Path, "docker:volume:"):
			if name := strings.TrimPrefix(item.Path, "docker:volume:"); name != "" {
				cmd = execCommand("docker", "volume", "rm", name)
			}
		case item.Path == "docker:build-cache":
			cmd = execCommand("docker", "builder", "prune", "-af")
		default:
			logger.Debug("docker clean skipped unknown path", "path", item.Path)
		}

		if cmd == nil {
			continue
		}
		if err := cmd.Run(); err != nil {
			logger.Warn("docker clean failed", "resource", item.Path, "error", err)
			result.Errors = append(result.Errors, item.Name+": "+err.Error())
			continue
		}
		result.FreedSpace += item.Size
		result.CleanedItems++
	}

	logger.Info("docker clean completed",
		"cleaned", result.CleanedItems,
		"freed", result.FreedSpace,
		"errors", len(result.Errors))

	return result, nil
}

func (s *DockerTarget) fetchVerboseDf() (*dockerDfVerbose, error) {
	output, err := execCommand("docker", "system", "df", "-v", "--format", "{{json .}}").Output()
	if err != nil {
		logger.Warn("docker system df -v failed", "error", err)
		return nil, err
	}

	line := strings.TrimSpace(string(output))
	if line == "" {
		return &dockerDfVerbose{}, nil
	}

	var df dockerDfVerbose
	if err := json.Unmarshal([]byte(line), &df); err != nil {
		logger.Warn("docker df json parse failed", "error", err)
		return nil, err
	}
	return &df, nil
}

func (s *DockerTarget) fetchBuildCacheSize() int64 {
	output, err := execCommand("docker", "system", "df", "--format", "{{json .}}").Output()
	if err != nil {
		return 0
	}

	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if line == "" {
			continue
		}
		var df dockerDfOutput
		if err := json.Unmarshal([]byte(line), &df); err != nil {
			continue
		}
		if strings.EqualFold(df.Type, "Build Cache") {
			return parseDockerSize(df.Reclaimable)
		}
	}
	return 0
}

type dockerImage struct {
	id    string
	label string
	size  int64
}

// dedupeImages collapses multi-tag rows from docker df into one entry
// per image ID, keeping the first usable tag as the label.
func dedupeImages(images []dockerDfImage) []dockerImage {
	byID := make(map[string]*dockerImage, len(images))
	for _, img := range images {
		if img.ID == "" {
			continue
		}

		size := parseDockerSize(img.UniqueSize)
		if size == 0 {
			size = parseDockerSize(img.Size)
		}
		if size == 0 {
			continue
		}

		entry := byID[img.ID]
		if entry == nil {
			entry = &dockerImage{id: img.ID, size: size}
			byID[img.ID] = entry
		} else if size > entry.size {
			entry.size = size
		}

		repo := strings.TrimSpace(img.Repository)
		tag := strings.TrimSpace(img.Tag)
		if entry.label == "" && repo != "" && repo != "<none>" && tag != "" && tag != "<none>" {
			entry.label = repo + ":" + tag
		}
	}

	out := make([]dockerImage, 0, len(byID))
	for _, entry := range byID {
		if entry.label == "" {
			short := strings.TrimPrefix(entry.id, "sha256:")
			if len(short) > dockerShortIDLength {
				short = short[:dockerShortIDLength]
			}
			entry.label = "untagged@" + short
		}
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// dockerUsage maps image IDs and volume names to the first container
// name using them.
func dockerUsage(df *dockerDfVerbose) (images, volumes map[string]string) {
	images = make(map[string]string)
	volumes = make(map[string]string)

	volumeSet := make(map[string]struct{}, len(df.Volumes))
	for _, v := range df.Volumes {
		if v.Name != "" {
			volumeSet[v.Name] = struct{}{}
		}
	}

	// Resolve container image references back to IDs via the tag label.
	tagToID := make(map[string]string)
	for _, img := range df.Images {
		repo := strings.TrimSpace(img.Repository)
		tag := strings.TrimSpace(img.Tag)
		if img.ID != "" && repo != "" && repo != "<none>" && tag != "" && tag != "<none>" {
			tagToID[repo+":"+tag] = img.ID
			if tag == "latest" {
				tagToID[repo] = img.ID
			}
		}
	}

	for _, c := range df.Containers {
		name := strings.TrimPrefix(strings.TrimSpace(c.Names), "/")
		if name == "" {
			continue
		}
		ref := strings.TrimSpace(c.Image)
		if ref != "" {
			if id, ok := tagToID[ref]; ok {
				if _, seen := images[id]; !seen {
					images[id] = name
				}
			} else if _, seen := images[ref]; !seen {
				images[ref] = name
			}
		}
		for _, mount := range strings.Split(c.Mounts, ",") {
			mount = strings.TrimSpace(mount)
			if mount == "" {
				continue
			}
			if _, ok := volumeSet[mount]; ok {
				if _, seen := volumes[mount]; !seen {
					volumes[mount] = name
				}
			}
		}
	}

	return images, volumes
}

func truncateName(name string, limit int) string {
	if limit <= 0 {
		return name
	}
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return string(runes[:limit])
}

// parseDockerSize converts docker's human sizes ("1.2GB", "500MB
// (50%)") to bytes.
func parseDockerSize(s string) int64 {
	if idx := strings.Index(s, "("); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}

	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "0B" || s == "" {
		return 0
	}

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "TB"):
		multiplier = 1024 * 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "TB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int64(value * float64(multiplier))
}
