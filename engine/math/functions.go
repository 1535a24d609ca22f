package math

import m "math"

const Pi float32 = m.Pi

func DegToRad(degrees float32) float32 {
	return degrees * (Pi / 180.0)
}

func RadToDeg(radians float32) float32 {
	return radians * (180.0 / Pi)
}

/**
 * @brief Creates and returns an identity matrix.
 */
func NewMat4Identity() Mat4 {
	outMatrix := Mat4{}
	outMatrix.Data[0] = 1.0
	outMatrix.Data[5] = 1.0
	outMatrix.Data[10] = 1.0
	outMatrix.Data[15] = 1.0
	return outMatrix
}

// Mul returns the result of multiplying the receiver by other.
func (mt Mat4) Mul(other Mat4) Mat4 {
	outMatrix := NewMat4Identity()
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := float32(0)
			for i := 0; i < 4; i++ {
				sum += mt.Data[row*4+i] * other.Data[i*4+col]
			}
			outMatrix.Data[row*4+col] = sum
		}
	}
	return outMatrix
}

/**
 * @brief Creates and returns a perspective matrix. Typically used to render 3d scenes.
 *
 * @param fovRadians The field of view in radians.
 * @param aspectRatio The aspect ratio.
 * @param nearClip The near clipping plane distance.
 * @param farClip The far clipping plane distance.
 * @return A new perspective matrix.
 */
func NewMat4Perspective(fovRadians, aspectRatio, nearClip, farClip float32) Mat4 {
	halfTanFov := float32(m.Tan(float64(fovRadians * 0.5)))
	outMatrix := Mat4{}
	outMatrix.Data[0] = 1.0 / (aspectRatio * halfTanFov)
	outMatrix.Data[5] = 1.0 / halfTanFov
	outMatrix.Data[10] = -((farClip + nearClip) / (farClip - nearClip))
	outMatrix.Data[11] = -1.0
	outMatrix.Data[14] = -((2.0 * farClip * nearClip) / (farClip - nearClip))
	return outMatrix
}

/**
 * @brief Creates and returns a look-at matrix, or a matrix looking
 * at target from the perspective of position.
 */
func NewMat4LookAt(position, target, up Vec3) Mat4 {
	outMatrix := Mat4{}
	zAxis := Vec3{
		X: target.X - position.X,
		Y: target.Y - position.Y,
		Z: target.Z - position.Z,
	}
	zAxis.Normalize()
	xAxis := up.Cross(zAxis)
	xAxis.Normalize()
	yAxis := zAxis.Cross(xAxis)

	outMatrix.Data[0] = xAxis.X
	outMatrix.Data[1] = yAxis.X
	outMatrix.Data[2] = -zAxis.X
	outMatrix.Data[4] = xAxis.Y
	outMatrix.Data[5] = yAxis.Y
	outMatrix.Data[6] = -zAxis.Y
	outMatrix.Data[8] = xAxis.Z
	outMatrix.Data[9] = yAxis.Z
	outMatrix.Data[10] = -zAxis.Z
	outMatrix.Data[12] = -xAxis.Dot(position)
	outMatrix.Data[13] = -yAxis.Dot(position)
	outMatrix.Data[14] = zAxis.Dot(position)
	outMatrix.Data[15] = 1.0
	return outMatrix
}
