package service

import (
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/talentgate/assessment-api/internal/dto"
	"github.com/talentgate/assessment-api/internal/model"
)

// Model-to-DTO mapping shared by the services. copier covers the matching
// fields; enum and encoded-set fields are fixed up manually.

func snapshotDTOs(snapshots []model.QuestionSnapshot) []dto.QuestionSnapshotDTO {
	out := make([]dto.QuestionSnapshotDTO, len(snapshots))
	for i := range snapshots {
		copier.Copy(&out[i], &snapshots[i])
	}
	return out
}

func responseDTO(response *model.QuestionResponse) dto.QuestionResponseDTO {
	var d dto.QuestionResponseDTO
	copier.Copy(&d, response)
	selected, err := model.DecodeAnswerSet(response.SelectedAnswers)
	if err != nil {
		log.Warn().Err(err).Uint("responseID", response.ID).Msg("unreadable selected answers while mapping response")
	}
	d.SelectedAnswers = selected
	return d
}

func responseDTOs(responses []model.QuestionResponse) []dto.QuestionResponseDTO {
	out := make([]dto.QuestionResponseDTO, len(responses))
	for i := range responses {
		out[i] = responseDTO(&responses[i])
	}
	return out
}

func videoDTO(video *model.VideoResponse) dto.VideoResponseDTO {
	var d dto.VideoResponseDTO
	copier.Copy(&d, video)
	d.ResponseType = string(video.ResponseType)
	return d
}

func videoDTOs(videos []model.VideoResponse) []dto.VideoResponseDTO {
	out := make([]dto.VideoResponseDTO, len(videos))
	for i := range videos {
		out[i] = videoDTO(&videos[i])
	}
	return out
}

func instanceDetailDTO(instance *model.TestInstance) *dto.TestInstanceDetailDTO {
	var d dto.TestInstanceDetailDTO
	copier.Copy(&d, instance)
	d.TestType = string(instance.TestType)
	d.Status = string(instance.Status)
	d.DifficultyLevel = string(instance.DifficultyLevel)
	d.Snapshots = snapshotDTOs(instance.Snapshots)
	return &d
}

func instanceSummaryDTOs(instances []model.TestInstance) []dto.TestInstanceSummaryDTO {
	out := make([]dto.TestInstanceSummaryDTO, len(instances))
	for i := range instances {
		copier.Copy(&out[i], &instances[i])
		out[i].TestType = string(instances[i].TestType)
		out[i].Status = string(instances[i].Status)
		out[i].DifficultyLevel = string(instances[i].DifficultyLevel)
	}
	return out
}
