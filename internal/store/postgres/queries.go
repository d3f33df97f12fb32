package postgres

const queryListAstrodexItems = `
SELECT id, user_id, name, object_type, catalogue, ra, dec, constellation,
       magnitude, size, notes, created_at, updated_at
FROM astrodex_items
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

const queryGetAstrodexItem = `
SELECT id, user_id, name, object_type, catalogue, ra, dec, constellation,
       magnitude, size, notes, created_at, updated_at
FROM astrodex_items
WHERE id = $1 AND user_id = $2
`

const queryInsertAstrodexItem = `
INSERT INTO astrodex_items
    (id, user_id, name, object_type, catalogue, ra, dec, constellation,
     magnitude, size, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

const queryUpdateAstrodexItem = `
UPDATE astrodex_items
SET object_type = $3, constellation = $4, magnitude = $5, size = $6,
    notes = $7, updated_at = $8
WHERE id = $1 AND user_id = $2
`

const queryDeleteAstrodexItem = `
DELETE FROM astrodex_items
WHERE id = $1 AND user_id = $2
`

const queryListEquipmentProfiles = `
SELECT id, user_id, kind, name, focal_length_mm, aperture_mm,
       pixel_size_um, sensor_width_mm, notes, created_at, updated_at
FROM equipment_profiles
WHERE user_id = $1 AND kind = $2
ORDER BY created_at
`

const queryGetEquipmentProfile = `
SELECT id, user_id, kind, name, focal_length_mm, aperture_mm,
       pixel_size_um, sensor_width_mm, notes, created_at, updated_at
FROM equipment_profiles
WHERE id = $1 AND user_id = $2
`

const queryInsertEquipmentProfile = `
INSERT INTO equipment_profiles
    (id, user_id, kind, name, focal_length_mm, aperture_mm,
     pixel_size_um, sensor_width_mm, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

const queryUpdateEquipmentProfile = `
UPDATE equipment_profiles
SET name = $3, focal_length_mm = $4, aperture_mm = $5, pixel_size_um = $6,
    sensor_width_mm = $7, notes = $8, updated_at = $9
WHERE id = $1 AND user_id = $2
`

const queryDeleteEquipmentProfile = `
DELETE FROM equipment_profiles
WHERE id = $1 AND user_id = $2
`
